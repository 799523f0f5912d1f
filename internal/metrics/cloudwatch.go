package metrics

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/rs/zerolog"

	"github.com/imrishuroy/royal-pizza/internal/aws"
)

// CloudWatch puts one datum per outcome. Failures are logged and dropped.
type CloudWatch struct {
	client    aws.CloudWatchAPI
	namespace string
	log       zerolog.Logger
	nowFunc   func() time.Time
}

// NewCloudWatch returns a recorder writing to namespace.
func NewCloudWatch(client aws.CloudWatchAPI, namespace string, log zerolog.Logger) *CloudWatch {
	return &CloudWatch{client: client, namespace: namespace, log: log, nowFunc: time.Now}
}

func (c *CloudWatch) OrderCreated(ctx context.Context, itemCount int, total float64) {
	now := c.nowFunc()
	c.put(ctx,
		datum("OrdersCreated", 1, cwtypes.StandardUnitCount, now),
		datum("OrderTotalAmount", total, cwtypes.StandardUnitNone, now),
		datum("OrderItemCount", float64(itemCount), cwtypes.StandardUnitCount, now),
	)
}

func (c *CloudWatch) OrderFailed(ctx context.Context, kind string) {
	d := datum("OrderFailures", 1, cwtypes.StandardUnitCount, c.nowFunc())
	d.Dimensions = []cwtypes.Dimension{{Name: aws.String("Kind"), Value: aws.String(kind)}}
	c.put(ctx, d)
}

func (c *CloudWatch) EventPublishFailed(ctx context.Context) {
	c.put(ctx, datum("EventPublishFailures", 1, cwtypes.StandardUnitCount, c.nowFunc()))
}

func (c *CloudWatch) put(ctx context.Context, data ...cwtypes.MetricDatum) {
	_, err := c.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  &c.namespace,
		MetricData: data,
	})
	if err != nil {
		c.log.Warn().Err(err).Str("namespace", c.namespace).Msg("put metric data failed")
	}
}

func datum(name string, value float64, unit cwtypes.StandardUnit, ts time.Time) cwtypes.MetricDatum {
	return cwtypes.MetricDatum{
		MetricName: aws.String(name),
		Value:      &value,
		Unit:       unit,
		Timestamp:  &ts,
	}
}
