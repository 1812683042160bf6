// Package bounded provides a generic, capacity-limited, blocking FIFO.
//
// The pizzeria uses two instances: the order queue between the acceptor and the
// bakers, and the warehouse between the bakers and the couriers. Both rely on the
// same guarantees:
//   - 0 <= Size() <= Capacity() at all times
//   - items leave in insertion order, whether taken one by one or in batches
//   - Put, Take and TakeUpTo block without a timeout and return ErrCancelled
//     once the caller's context is done
//
// Example:
//
//	queue, err := bounded.New[*order.Order](cfg.QueueCapacity)
//	if err != nil {
//	    return err
//	}
//
//	if err := queue.Put(ctx, o); errors.Is(err, bounded.ErrCancelled) {
//	    // the caller gave up while the queue was full
//	}
package bounded
