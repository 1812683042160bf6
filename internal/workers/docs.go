// Package workers runs the pizzeria's bakers and couriers.
//
// A Baker takes orders from the queue, cooks them and places pizzas in the
// warehouse. A Courier takes batches of pizzas from the warehouse and delivers
// them. Every status change is persisted through the order repository right after
// it is applied in memory; an order whose change cannot be persisted is discarded.
//
// Manager owns one goroutine per worker. Stop cancels the shared context, which
// wakes any worker blocked on a channel or in a simulated sleep, and then waits a
// bounded grace period per worker. Workers that do not exit in time are reported,
// not abandoned silently.
//
// # Discard policy
//
// A worker discards its in-flight order when:
//   - its context is cancelled while it waits on a channel, cooks, or delivers
//   - a status change cannot be persisted
//   - an unexpected failure (including a panic) interrupts processing
//
// Cancellation stops the worker loop; other failures only drop the current order.
package workers
