package council

import (
	"context"
	"fmt"
	"sync"
)

// outcome 单个并发任务的结果槽
type outcome[T any] struct {
	value T
	err   error
}

// fanOut 并发执行 n 个任务并按下标收集全部结果
//
// 与 errgroup 不同，任一任务失败不会中断其余任务：
// 三阶段流程要求收齐每个单元的成败再做取舍。
// panic 被就地回收为错误，避免单个任务拖垮整次运行。
func fanOut[T any](ctx context.Context, n int, task func(ctx context.Context, i int) (T, error)) []outcome[T] {
	outcomes := make([]outcome[T], n)

	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					outcomes[i].err = fmt.Errorf("task %d panicked: %v", i, r)
				}
			}()
			outcomes[i].value, outcomes[i].err = task(ctx, i)
		}(i)
	}
	wg.Wait()

	return outcomes
}
