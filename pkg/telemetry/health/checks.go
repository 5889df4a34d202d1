package health

import (
	"context"
	"fmt"
	"os"
)

// Pinger is implemented by stores that can verify their connection, such as
// *sql.DB and the evidence stores.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingCheck reports p unhealthy when its ping fails.
func PingCheck(p Pinger) CheckFunc {
	return func(ctx context.Context) error {
		return p.PingContext(ctx)
	}
}

// FileCheck reports unhealthy when path is missing or is not a regular file.
func FileCheck(path string) CheckFunc {
	return func(context.Context) error {
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return fmt.Errorf("%s is not a regular file", path)
		}
		return nil
	}
}

// StateCheck reports unhealthy while state returns an error. It lets a
// long-running command expose its latest outcome, such as the last suite run.
func StateCheck(state func() error) CheckFunc {
	return func(context.Context) error {
		return state()
	}
}
