package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"brista-coffee/helpers"
	"brista-coffee/models"
)

var readyTemplate = template.Must(template.New("ready").Parse(`<div style="font-family: sans-serif; max-width: 480px;">
  <h2>Your order is ready, {{.Name}}!</h2>
  <p>Order <strong>#{{.ShortID}}</strong> is waiting for you at the counter.</p>
  <table style="width: 100%; border-collapse: collapse;">
    {{range .Items}}<tr>
      <td>{{.Quantity}} x {{.Name}}{{if .Details}} <small>({{.Details}})</small>{{end}}</td>
      <td style="text-align: right;">${{.Amount}}</td>
    </tr>
    {{end}}<tr>
      <td><strong>Total</strong></td>
      <td style="text-align: right;"><strong>${{.Total}}</strong></td>
    </tr>
  </table>
  <p>Thanks for ordering with Brista Coffee.</p>
</div>`))

var ratingTemplate = template.Must(template.New("rating").Parse(`<div style="font-family: sans-serif; max-width: 480px;">
  <h2>How was your order, {{.Name}}?</h2>
  <p>Tap a star to rate order <strong>#{{.ShortID}}</strong>.</p>
  <p style="font-size: 28px;">
    {{range .Links}}<a href="{{.URL}}" style="text-decoration: none;" title="{{.Stars}} star">&#9733;</a>
    {{end}}</p>
  <p>It takes one click and helps us brew better.</p>
</div>`))

type lineView struct {
	Quantity int
	Name     string
	Details  string
	Amount   string
}

type ratingLink struct {
	Stars int
	URL   string
}

// ReadyEmail renders the pickup notice for an order.
func ReadyEmail(order models.Order) (subject, html string, err error) {
	lines := make([]lineView, 0, len(order.Items))
	for _, item := range order.Items {
		var details []string
		for _, d := range []string{item.Milk, item.Cup, item.Sugar} {
			if d != "" {
				details = append(details, d)
			}
		}
		lines = append(lines, lineView{
			Quantity: item.Quantity,
			Name:     item.Name,
			Details:  strings.Join(details, ", "),
			Amount:   money(item.Price * float64(item.Quantity)),
		})
	}

	var buf bytes.Buffer
	err = readyTemplate.Execute(&buf, map[string]interface{}{
		"Name":    order.Customer_name,
		"ShortID": helpers.ShortOrderID(order.Order_id),
		"Items":   lines,
		"Total":   money(order.Total),
	})
	if err != nil {
		return "", "", fmt.Errorf("render ready email: %w", err)
	}
	return fmt.Sprintf("Order #%s is ready for pickup", helpers.ShortOrderID(order.Order_id)), buf.String(), nil
}

// RatingEmail renders the feedback request with one link per star.
func RatingEmail(order models.Order, baseURL string) (subject, html string, err error) {
	var buf bytes.Buffer
	err = ratingTemplate.Execute(&buf, map[string]interface{}{
		"Name":    order.Customer_name,
		"ShortID": helpers.ShortOrderID(order.Order_id),
		"Links":   RatingLinks(order, baseURL),
	})
	if err != nil {
		return "", "", fmt.Errorf("render rating email: %w", err)
	}
	return "How was your coffee?", buf.String(), nil
}

// RatingLinks builds <base>/rate/<order>?token=<token>&rating=<n> for n = 1..5.
func RatingLinks(order models.Order, baseURL string) []ratingLink {
	base := strings.TrimRight(baseURL, "/")
	links := make([]ratingLink, 0, 5)
	for n := 1; n <= 5; n++ {
		links = append(links, ratingLink{
			Stars: n,
			URL:   fmt.Sprintf("%s/rate/%s?token=%s&rating=%d", base, order.Order_id, order.Rating_token, n),
		})
	}
	return links
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
