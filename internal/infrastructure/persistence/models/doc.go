// Package models contains the GORM persistence models. Domain aggregates stay
// free of ORM tags; each model converts to and from its aggregate with
// ToDomain and a FromDomain constructor.
//
//   - base.go: BaseModel and AggregateModel (version column)
//   - account.go: accounts and push devices
//   - menu.go: dishes
//   - ordering.go: orders, order items and the daily order number sequence
//   - chat.go: rooms, participants and messages
//   - notification.go: inbox items
//   - loyalty.go: loyalty accounts and the points ledger
//   - outbox.go: domain events awaiting delivery
package models
