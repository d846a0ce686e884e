package ai

import "context"

// Client mengirim satu percakapan (system + user) ke model dan mengembalikan teks jawaban.
type Client interface {
	Complete(ctx context.Context, system, user string) (string, error)
}
