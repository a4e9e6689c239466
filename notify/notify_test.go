package notify

import (
	"context"
	"strings"
	"testing"

	"brista-coffee/logger"
	"brista-coffee/models"
)

func sampleOrder() models.Order {
	return models.Order{
		Order_id:      "665f1c2ab9e4d1a2b3c4d5e6",
		Customer_name: "Ana",
		Rating_token:  "tok-123",
		Total:         12.5,
		Items: []models.OrderItem{
			{Name: "Latte", Price: 4.5, Quantity: 2, Milk: "Oat Milk"},
			{Name: "Brownie", Price: 3.5, Quantity: 1},
		},
	}
}

func TestReadyEmail(t *testing.T) {
	subject, html, err := ReadyEmail(sampleOrder())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(subject, "#C4D5E6") {
		t.Fatalf("subject missing short id: %s", subject)
	}
	for _, want := range []string{"Ana", "2 x Latte", "Oat Milk", "$9.00", "$12.50"} {
		if !strings.Contains(html, want) {
			t.Errorf("html missing %q", want)
		}
	}
}

func TestRatingLinks(t *testing.T) {
	links := RatingLinks(sampleOrder(), "https://brista.example/")
	if len(links) != 5 {
		t.Fatalf("expected 5 links, got %d", len(links))
	}
	want := "https://brista.example/rate/665f1c2ab9e4d1a2b3c4d5e6?token=tok-123&rating=3"
	if links[2].URL != want {
		t.Fatalf("expected %s, got %s", want, links[2].URL)
	}

	_, html, err := RatingEmail(sampleOrder(), "https://brista.example")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(html, "rating=5") || !strings.Contains(html, "token=tok-123") {
		t.Fatal("rating html missing links")
	}
}

func TestLogSender(t *testing.T) {
	s := NewLogSender(logger.Discard())
	if err := s.Send(context.Background(), "a@b.c", "hi", "<p>hi</p>"); err != nil {
		t.Fatalf("send: %v", err)
	}
}
