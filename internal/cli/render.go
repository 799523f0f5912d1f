package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/imrishuroy/royal-pizza/internal/catalog"
	"github.com/imrishuroy/royal-pizza/internal/orders"
)

const receiptWidth = 48

var (
	accent = lipgloss.Color("#B91C1C") // tomato
	dim    = lipgloss.Color("#6B7280")

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	dimStyle   = lipgloss.NewStyle().Foreground(dim)
	totalStyle = lipgloss.NewStyle().Bold(true)
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 1)
)

// RenderReceipt formats an order for the terminal.
func RenderReceipt(o orders.Order) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Royal Pizza  " + o.OrderNumber))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("%s  %s", o.Customer.Name, o.Customer.Phone)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Pickup " + o.PickupTime.UTC().Format("2006-01-02 15:04 MST")))
	b.WriteString("\n\n")

	for _, it := range o.Items {
		b.WriteString(line(fmt.Sprintf("%d x %s", it.Quantity, itemLabel(it.ItemType)), money(it.Subtotal)))
		b.WriteString("\n")
		b.WriteString(dimStyle.Render(fmt.Sprintf("    @ %s", money(it.UnitPrice))))
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render(strings.Repeat("─", receiptWidth)))
	b.WriteString("\n")
	b.WriteString(totalStyle.Render(line("Total", money(o.TotalAmount))))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Status " + string(o.Status)))

	return boxStyle.Render(b.String())
}

// RenderMenu formats the available pizzas with their size prices.
func RenderMenu(pizzas []catalog.Pizza) string {
	if len(pizzas) == 0 {
		return dimStyle.Render("no pizzas available")
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%-20s %8s %8s %8s", "Pizza", "Small", "Medium", "Large")))
	for _, p := range pizzas {
		b.WriteString("\n")
		fmt.Fprintf(&b, "%-20s %8s %8s %8s", p.Name, money(p.Price.Small), money(p.Price.Medium), money(p.Price.Large))
	}
	return boxStyle.Render(b.String())
}

func itemLabel(it orders.ItemType) string {
	switch v := it.(type) {
	case orders.StandardPizza:
		return fmt.Sprintf("%s (%s)", v.PizzaID, v.Size)
	case orders.CustomPizza:
		return fmt.Sprintf("Custom (%s)", v.Size)
	default:
		return "?"
	}
}

func line(left, right string) string {
	pad := receiptWidth - lipgloss.Width(left) - lipgloss.Width(right)
	if pad < 1 {
		pad = 1
	}
	return left + strings.Repeat(" ", pad) + right
}

func money(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}
