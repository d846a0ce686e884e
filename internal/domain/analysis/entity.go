package analysis

import (
	"time"
)

// ID tipe untuk task analisis
type TaskID string

// Status enum
type Status string

const (
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

// NoResultPlaceholder dikembalikan kalau kode tidak menghasilkan nilai.
const NoResultPlaceholder = "Code executed successfully but no result variable found"

// Request adalah record log yang disimpan sekali per request.
type Request struct {
	TaskID         TaskID    `json:"task_id"`
	Timestamp      time.Time `json:"timestamp"`
	Question       string    `json:"question"`
	FilesProcessed []string  `json:"files_processed"`
	Status         Status    `json:"status"`
}

// Result envelope yang dikirim ke client.
type Result struct {
	TaskID        TaskID  `json:"task_id"`
	Result        any     `json:"result"`
	ExecutionTime float64 `json:"execution_time"`
	Status        Status  `json:"status"`
	Error         *string `json:"error"`
}
