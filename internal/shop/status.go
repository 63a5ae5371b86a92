package shop

import "strconv"

// PaymentStatus is the payment state of an order.
type PaymentStatus int

const (
	PaymentPending PaymentStatus = iota
	PaymentProcessing
	PaymentSuccessful
	PaymentFailed
	PaymentCanceled
)

var paymentStatusNames = []string{"Pending", "Processing", "Successful", "Failed", "Canceled"}

func (s PaymentStatus) String() string {
	if s >= 0 && int(s) < len(paymentStatusNames) {
		return paymentStatusNames[s]
	}
	return "Unknown (" + strconv.Itoa(int(s)) + ")"
}

// OrderStatus is the delivery state of an order.
type OrderStatus int

const (
	OrderPending OrderStatus = iota
	OrderDelivered
	OrderPicked
	OrderCanceled
)

var orderStatusNames = []string{"Pending", "Delivered", "Picked", "Canceled"}

func (s OrderStatus) String() string {
	if s >= 0 && int(s) < len(orderStatusNames) {
		return orderStatusNames[s]
	}
	return "Unknown (" + strconv.Itoa(int(s)) + ")"
}

// Choice is a selectable value of an enumerated field.
type Choice struct {
	Value string
	Label string
}

// PaymentStatusChoices lists payment states for filter and edit forms.
func PaymentStatusChoices() []Choice {
	return choices(paymentStatusNames)
}

// OrderStatusChoices lists order states for filter and edit forms.
func OrderStatusChoices() []Choice {
	return choices(orderStatusNames)
}

func choices(names []string) []Choice {
	out := make([]Choice, len(names))
	for i, n := range names {
		out[i] = Choice{Value: strconv.Itoa(i), Label: n}
	}
	return out
}
