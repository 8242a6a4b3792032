package common_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"appforge/internal/common"
)

// ExampleDo_singleAttempt 默认只调用一次上游
func ExampleDo_singleAttempt() {
	calls := 0
	err := common.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return errors.New("502 bad gateway")
	})

	fmt.Println(calls, err)
	// Output: 1 502 bad gateway
}

// ExampleDo_withRetries 打开重试，但 404 不重试
func ExampleDo_withRetries() {
	calls := 0
	err := common.Do(context.Background(),
		func(ctx context.Context) error {
			calls++
			if calls < 3 {
				return common.NewError(common.ErrCodeGitHubAPI, "secondary rate limit")
			}
			return nil
		},
		common.WithMaxRetries(3),
		common.WithInitialDelay(time.Millisecond),
		common.WithRetryIf(func(err error) bool {
			return !common.HasCode(err, common.ErrCodeNotFound)
		}),
	)

	fmt.Println(calls, err)
	// Output: 3 <nil>
}
