package order

// ItemChanges 自上次持久化以来的明细变更
// 仓储按 Removed → Updated → Added 的顺序落库,
// 同一本书先删后加时不会触发(order_id, book_id)唯一索引冲突
type ItemChanges struct {
	Removed []*OrderItem
	Updated []*OrderItem
	Added   []*OrderItem
}

// Empty 是否没有任何变更
func (c ItemChanges) Empty() bool {
	return len(c.Removed) == 0 && len(c.Updated) == 0 && len(c.Added) == 0
}

type changeTracker struct {
	addedIDs   map[string]bool
	updatedIDs map[string]bool
	removedSet []*OrderItem
}

func (t *changeTracker) added(bookID string) {
	if t.addedIDs == nil {
		t.addedIDs = make(map[string]bool)
	}
	t.addedIDs[bookID] = true
}

func (t *changeTracker) updated(bookID string) {
	if t.addedIDs[bookID] {
		return
	}
	if t.updatedIDs == nil {
		t.updatedIDs = make(map[string]bool)
	}
	t.updatedIDs[bookID] = true
}

func (t *changeTracker) removed(item *OrderItem) {
	if t.addedIDs[item.BookID] {
		delete(t.addedIDs, item.BookID)
		return
	}
	delete(t.updatedIDs, item.BookID)
	t.removedSet = append(t.removedSet, item)
}

// PendingChanges 返回待持久化的明细变更
// Updated/Added中的指针指向聚合内的明细,仓储插入后可回填ID
func (o *Order) PendingChanges() ItemChanges {
	var c ItemChanges
	c.Removed = append(c.Removed, o.tracker.removedSet...)
	for _, item := range o.items {
		switch {
		case o.tracker.addedIDs[item.BookID]:
			c.Added = append(c.Added, item)
		case o.tracker.updatedIDs[item.BookID]:
			c.Updated = append(c.Updated, item)
		}
	}
	return c
}

// MarkPersisted 仓储写入成功后清空变更记录
func (o *Order) MarkPersisted() {
	o.tracker = changeTracker{}
}
