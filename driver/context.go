package driver

import "context"

type executorTxContextKey struct{}

// WithExecutor returns a context whose store calls run inside exec.
//
// Example:
//
//	tx, _ := drv.Begin(ctx)
//	txCtx := driver.WithExecutor(ctx, tx)
//	_ = store.SaveArtifacts(txCtx, arts) // joins tx
//	_ = tx.Commit(ctx)
func WithExecutor(ctx context.Context, exec ExecutorTx) context.Context {
	return context.WithValue(ctx, executorTxContextKey{}, exec)
}

// ExecutorFromContext returns the transaction stored by WithExecutor, or nil.
func ExecutorFromContext(ctx context.Context) ExecutorTx {
	if exec, ok := ctx.Value(executorTxContextKey{}).(ExecutorTx); ok {
		return exec
	}
	return nil
}
