package world

import "fmt"

// StepError records a failure raised by a world update handler.
type StepError struct {
	Step  int
	Time  float64
	Cause any
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Cause)
}

func (e *StepError) Unwrap() error {
	if err, ok := e.Cause.(error); ok {
		return err
	}
	return nil
}
