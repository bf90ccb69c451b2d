package memory

import (
	"context"

	"github.com/bookstore/orderflow/internal/domain/inventory"
)

type logRepo struct {
	run func(func(*state) error) error
}

func (r *logRepo) Append(ctx context.Context, logs []*inventory.Log) error {
	return r.run(func(st *state) error {
		for _, l := range logs {
			st.nextLogID++
			l.ID = st.nextLogID
			cl := *l
			st.logs = append(st.logs, &cl)
		}
		return nil
	})
}

func (r *logRepo) ListByOrderID(ctx context.Context, orderID string) ([]*inventory.Log, error) {
	var logs []*inventory.Log
	err := r.run(func(st *state) error {
		for _, l := range st.logs {
			if l.OrderID == orderID {
				cl := *l
				logs = append(logs, &cl)
			}
		}
		return nil
	})
	return logs, err
}
