package notifications

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/uwearuk/storefront/internal/orders/domain"
)

// Email bodies are rendered into a shared branded frame so every customer
// message carries the same header and support footer.

var frameTmpl = template.Must(template.New("frame").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: auto; background-color: #F5F5F5; padding: 20px;">
    <div style="background-color: #FFD700; padding: 20px; text-align: center;">
        <h1 style="margin: 0; font-size: 2rem; font-weight: bold; color: #000;">UWEAR</h1>
    </div>
    <div style="background-color: #000000; height: 4px;"></div>
    <div style="border: 2px solid #000000; padding: 20px; background-color: #FFFFFF;">
        {{.Content}}
        <p style="margin-top: 20px; text-align: center;">
            If you have any questions, contact us at <a href="mailto:support@uwearuk.com" style="color: #007BFF;">support@uwearuk.com</a>.
        </p>
        <p style="text-align: center;">
            Visit us at <a href="https://uwearuk.com" style="color: #007BFF;">uwearuk.com</a>
        </p>
    </div>
</div>
`))

var confirmationTmpl = template.Must(template.New("confirmation").Funcs(template.FuncMap{
	"pounds":   poundsString,
	"lineCost": lineCost,
}).Parse(`
<h2 style="color: #333;">Thank You for Your Order, {{.Order.CustomerDetails.FirstName}}!</h2>
<p>Your order #{{.Order.ID}} has been successfully paid and confirmed.</p>
<h3>Order Summary</h3>
<table style="width: 100%; border-collapse: collapse;">
    <thead>
        <tr style="background-color: #f5f5f5;">
            <th style="padding: 10px; text-align: left;">Image</th>
            <th style="padding: 10px; text-align: left;">Product</th>
            <th style="padding: 10px; text-align: left;">Quantity</th>
            <th style="padding: 10px; text-align: left;">Price</th>
        </tr>
    </thead>
    <tbody>
        {{range .Order.Items}}
        <tr>
            <td><img src="{{.Image}}" alt="{{.Name}}" style="width: 50px; height: auto;" /></td>
            <td>{{.Name}} ({{.Size}})</td>
            <td>{{.Quantity}}</td>
            <td>£{{lineCost .}}</td>
        </tr>
        {{end}}
    </tbody>
</table>
<p style="margin-top: 20px;"><strong>Subtotal: £{{pounds .Order.ItemsPriceCents}}</strong></p>
<p><strong>Shipping: £{{pounds .Order.ShippingPriceCents}}</strong></p>
<p><strong>Total: £{{pounds .Order.TotalPriceCents}}</strong></p>
<h3>Shipping Address</h3>
<p>
    {{.Order.ShippingAddress.Street}}, {{.Order.ShippingAddress.City}}, <br />
    {{.Order.ShippingAddress.PostalCode}}, {{.Order.ShippingAddress.Country}} ({{.Order.ShippingAddress.Type}})
</p>
<h3>Payment Method</h3>
<p>{{.Order.PaymentMethod}}</p>
<p style="margin-top: 20px; text-align: center;">
    <a href="https://uwearuk.com/account/orders/{{.Order.ID}}" style="background-color: #007BFF; color: #FFFFFF; padding: 10px 20px; text-decoration: none; border-radius: 5px;">View Order</a>
</p>
`))

var dispatchedTmpl = template.Must(template.New("dispatched").Parse(`
<h2 style="color: #333;">Your UWEAR Order #{{.Order.ID}} Has Been Dispatched!</h2>
<p>We're pleased to inform you that your order has been dispatched.</p>
<h3>Order Details</h3>
<p><strong>Order ID:</strong> {{.Order.ID}}</p>
<p><strong>Shipping Method:</strong> Royal Mail Non-Trackable</p>
<h3>Items</h3>
<ul>
    {{range .Order.Items}}<li>{{.Name}} ({{.Size}}) - Quantity: {{.Quantity}}</li>{{end}}
</ul>
<h3>Shipping Address</h3>
<p>
    {{.Order.ShippingAddress.Street}}, {{.Order.ShippingAddress.City}}, <br />
    {{.Order.ShippingAddress.PostalCode}}, {{.Order.ShippingAddress.Country}} ({{.Order.ShippingAddress.Type}})
</p>
<p style="margin-top: 20px; text-align: center;">
    <a href="https://uwearuk.com/account/orders/{{.Order.ID}}" style="background-color: #007BFF; color: #FFFFFF; padding: 10px 20px; text-decoration: none; border-radius: 5px;">View Order</a>
</p>
`))

// ConfirmationSubject returns the subject line for the paid-order confirmation.
func ConfirmationSubject(order domain.Order) string {
	return fmt.Sprintf("UWEAR Order Confirmation #%s", order.ID)
}

// ConfirmationBody renders the paid-order confirmation email.
func ConfirmationBody(order domain.Order) (string, error) {
	return render(confirmationTmpl, order)
}

// DispatchedSubject returns the subject line for the dispatched notice.
func DispatchedSubject(order domain.Order) string {
	return fmt.Sprintf("Your UWEAR Order #%s Has Been Dispatched!", order.ID)
}

// DispatchedBody renders the dispatched notice sent when an order moves to sales.
func DispatchedBody(order domain.Order) (string, error) {
	return render(dispatchedTmpl, order)
}

func render(content *template.Template, order domain.Order) (string, error) {
	var inner strings.Builder
	if err := content.Execute(&inner, struct{ Order domain.Order }{order}); err != nil {
		return "", fmt.Errorf("render email: %w", err)
	}

	var out strings.Builder
	err := frameTmpl.Execute(&out, struct{ Content template.HTML }{template.HTML(inner.String())})
	if err != nil {
		return "", fmt.Errorf("render email frame: %w", err)
	}

	return out.String(), nil
}

func poundsString(cents int64) string {
	return fmt.Sprintf("%.2f", domain.CentsToPounds(cents))
}

func lineCost(item domain.OrderItem) string {
	return poundsString(item.UnitPriceCents * int64(item.Quantity))
}
