package main

import (
	"fmt"
	"net/http"
	"time"

	"lifeops/internal/client"
	"lifeops/internal/shared/eventbus"

	"github.com/fasthttp/websocket"
	"github.com/spf13/cobra"
)

const handshakeTimeout = 10 * time.Second

var eventMessages = map[string]struct {
	toast   client.ToastType
	message string
}{
	eventbus.EventTypeUserSignedUp:         {client.ToastSuccess, "Account created"},
	eventbus.EventTypeUserSignedIn:         {client.ToastInfo, "New sign-in to your account"},
	eventbus.EventTypeUserSignedOut:        {client.ToastInfo, "A session signed out"},
	eventbus.EventTypePasswordChanged:      {client.ToastWarning, "Your password was changed"},
	eventbus.EventTypeProfileUpdated:       {client.ToastSuccess, "Profile updated"},
	eventbus.EventTypeSessionRevoked:       {client.ToastWarning, "A session was terminated"},
	eventbus.EventTypeOtherSessionsRevoked: {client.ToastWarning, "All other sessions were terminated"},
}

// toastFor maps a stream frame onto the toast it is shown as
func toastFor(msg client.StreamMessage) (client.ToastType, string) {
	if known, ok := eventMessages[msg.Type]; ok {
		return known.toast, known.message
	}
	return client.ToastInfo, msg.Type
}

func (c *cli) watchCmd() *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream your account events as notifications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.requireSession(cmd); err != nil {
				return err
			}
			target, err := c.api.EventsURL()
			if err != nil {
				return err
			}

			dialer := &websocket.Dialer{
				HandshakeTimeout: handshakeTimeout,
				ReadBufferSize:   1024,
				WriteBufferSize:  1024,
			}
			headers := http.Header{
				"Authorization": {"Bearer " + c.api.Token()},
				"User-Agent":    {"lifeops-cli/1.0"},
			}
			conn, _, err := dialer.DialContext(cmd.Context(), target, headers)
			if err != nil {
				return fmt.Errorf("connect to event stream: %w", err)
			}
			defer conn.Close()

			stop := make(chan struct{})
			defer close(stop)
			go func() {
				select {
				case <-cmd.Context().Done():
					_ = conn.WriteControl(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
					_ = conn.Close()
				case <-stop:
				}
			}()

			c.ui.Info("Watching account events (Ctrl+C to stop)")
			for received := 0; count == 0 || received < count; received++ {
				var msg client.StreamMessage
				if err := conn.ReadJSON(&msg); err != nil {
					if cmd.Context().Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
						return nil
					}
					return fmt.Errorf("read event: %w", err)
				}
				typ, text := toastFor(msg)
				c.ui.AddToast(typ, text, 0)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&count, "count", 0, "exit after this many events (0 streams until interrupted)")
	return cmd
}
