package console

import (
	"fmt"

	"kgeyst.com/refinery/pkg/refinery/domain"
)

type notifier struct{}

// NewNotifier surfaces notifications by printing them to the console.
func NewNotifier() domain.Notifier {
	return &notifier{}
}

func (n *notifier) Notify(message string) {
	fmt.Printf("! %s\n", message)
}
