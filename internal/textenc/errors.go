package textenc

import "errors"

// Construction errors.
var (
	// ErrEmptyEmbedding is returned when the word-embedding matrix is missing
	// or empty.
	ErrEmptyEmbedding = errors.New("textenc: word embedding matrix is empty")

	// ErrUnsupportedCell is returned for a recurrent cell kind other than "gru".
	ErrUnsupportedCell = errors.New("textenc: unsupported recurrent cell")

	// ErrUnsupportedPooling is returned for a pooling kind other than
	// "mean", "max" or "default".
	ErrUnsupportedPooling = errors.New("textenc: unsupported pooling")
)

// Forward errors.
var (
	// ErrEmptySequence is returned by mean and max pooling when a row of the
	// batch consists of padding only.
	ErrEmptySequence = errors.New("textenc: sequence has no non-padding tokens")

	// ErrInvalidIndices is returned when the token index tensor has the wrong
	// rank or holds an index outside the embedding table.
	ErrInvalidIndices = errors.New("textenc: invalid token indices")
)

// Registry errors.
var (
	ErrUnknownEncoder   = errors.New("textenc: unknown encoder")
	ErrDuplicateEncoder = errors.New("textenc: encoder already registered")
)
