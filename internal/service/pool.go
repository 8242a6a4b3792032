package service

import (
	"context"
	"sync"
)

// DefaultConcurrency 单个请求内同时在途的上游调用上限
const DefaultConcurrency = 8

type job[J any] struct {
	index int
	input J
}

type result[R any] struct {
	index int
	value R
	ok    bool
}

// runPool 用固定数量的 worker 执行 fn，按输入顺序返回 ok 为 true 的结果。
// ctx 结束后未开始的任务被跳过。
func runPool[J, R any](ctx context.Context, workers int, inputs []J, fn func(ctx context.Context, input J) (R, bool)) []R {
	if len(inputs) == 0 {
		return []R{}
	}
	if workers <= 0 {
		workers = DefaultConcurrency
	}
	if workers > len(inputs) {
		workers = len(inputs)
	}

	jobs := make(chan job[J], len(inputs))
	results := make(chan result[R], len(inputs))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				if ctx.Err() != nil {
					results <- result[R]{index: j.index}
					continue
				}
				v, ok := fn(ctx, j.input)
				results <- result[R]{index: j.index, value: v, ok: ok}
			}
		}()
	}

	for i, in := range inputs {
		jobs <- job[J]{index: i, input: in}
	}
	close(jobs)

	wg.Wait()
	close(results)

	slots := make([]*R, len(inputs))
	for r := range results {
		if r.ok {
			v := r.value
			slots[r.index] = &v
		}
	}

	out := make([]R, 0, len(inputs))
	for _, v := range slots {
		if v != nil {
			out = append(out, *v)
		}
	}
	return out
}
