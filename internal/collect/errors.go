package collect

import (
	"fmt"

	"github.com/in-rolls/missing-daughters-of-pols/internal/fetch"
)

func errStatus(res *fetch.Result) error {
	return fmt.Errorf("unexpected status: %s", res.Status)
}
