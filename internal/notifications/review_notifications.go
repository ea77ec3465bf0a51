package notifications

import (
	"context"
	"errors"
	"fmt"

	"github.com/9ssi7/exponent"
)

// SendReviewVerified alerts staff devices that a public review was matched
// to a booking's review request.
func SendReviewVerified(ctx context.Context, push PushSender, deviceTokens []string, bookingID int64, requestID string) error {
	if len(deviceTokens) == 0 {
		return errors.New("no push tokens registered")
	}

	title := "Review verified"
	body := fmt.Sprintf("A public review was matched to booking #%d", bookingID)

	msgs := make([]*exponent.Message, 0, len(deviceTokens))
	for _, t := range deviceTokens {
		token := exponent.Token(t)
		msgs = append(msgs, &exponent.Message{
			To:    []*exponent.Token{&token},
			Title: title,
			Body:  body,
			Data: map[string]string{
				"type":      "review",
				"event":     "VERIFIED",
				"bookingId": fmt.Sprintf("%d", bookingID),
				"requestId": requestID,
				"screen":    "booking-reviews-screen",
			},
		})
	}

	_, err := push.Publish(ctx, msgs)
	return err
}
