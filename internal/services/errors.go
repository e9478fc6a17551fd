package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("invalid input")
	ErrConflict   = errors.New("conflict")
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func notFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// conflictOr turns a uniqueness-constraint violation into ErrConflict and
// returns any other error unchanged.
func conflictOr(err error, what string) error {
	var dbErr *neo4j.Neo4jError
	if errors.As(err, &dbErr) && strings.Contains(dbErr.Code, "ConstraintValidationFailed") {
		return fmt.Errorf("%w: %s already exists", ErrConflict, what)
	}
	return err
}
