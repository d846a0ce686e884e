package analysis

import "errors"

var (
	// ErrInvalidInput: upload tidak bisa diparse (mis. CSV rusak). Tidak disimpan.
	ErrInvalidInput = errors.New("invalid input")
	// ErrMissingQuestion: part "questions" tidak ada di form.
	ErrMissingQuestion = errors.New("questions file is required")
	// ErrGeneration: model gagal menghasilkan kode.
	ErrGeneration = errors.New("code generation failed")
	// ErrExecution: kode hasil model gagal dijalankan di sandbox.
	ErrExecution = errors.New("code execution error")
)
