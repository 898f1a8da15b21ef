package cache

import (
	"fmt"

	"github.com/google/uuid"
)

func JobStateKey(jobID uuid.UUID) string {
	return fmt.Sprintf("job:state:%s", jobID)
}

func RateLimitKey(keyPrefix string) string {
	return fmt.Sprintf("ratelimit:%s", keyPrefix)
}
