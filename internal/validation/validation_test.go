package validation

import "testing"

func TestCreateOrderRequest_Valid(t *testing.T) {
	v := New()

	req := CreateOrderRequest{
		CustomerName: "Jane",
		ProductName:  "Widget",
		Quantity:     3,
	}

	if err := v.Struct(req); err != nil {
		t.Fatalf("expected valid, got error: %v", err)
	}
}

func TestCreateOrderRequest_Invalid(t *testing.T) {
	v := New()

	cases := []CreateOrderRequest{
		{},
		{CustomerName: "Jane"},
		{CustomerName: "Jane", ProductName: "Widget"},
		{CustomerName: "Jane", ProductName: "Widget", Quantity: -1},
	}
	for i, req := range cases {
		if err := v.Struct(req); err == nil {
			t.Fatalf("case %d: expected validation error, got nil", i)
		}
	}
}

func TestUpdateStatusRequest_StatusEnum(t *testing.T) {
	v := New()

	for _, status := range []string{"Pending", "Processing", "Completed", "Cancelled"} {
		if err := v.Struct(UpdateStatusRequest{Status: status}); err != nil {
			t.Fatalf("status %q: expected valid, got %v", status, err)
		}
	}

	for _, status := range []string{"", "Shipped", "pending", "DONE"} {
		if err := v.Struct(UpdateStatusRequest{Status: status}); err == nil {
			t.Fatalf("status %q: expected validation error, got nil", status)
		}
	}
}
