package router

import (
	"github.com/gin-gonic/gin"
	"github.com/homechef/backend/internal/domain/account"
	"github.com/homechef/backend/internal/interfaces/http/handler"
	"github.com/homechef/backend/internal/interfaces/http/middleware"
)

// Handlers bundles the API handlers
type Handlers struct {
	Accounts      *handler.AccountHandler
	Dishes        *handler.DishHandler
	Orders        *handler.OrderHandler
	Kitchen       *handler.KitchenHandler
	Delivery      *handler.DeliveryHandler
	Chat          *handler.ChatHandler
	Notifications *handler.NotificationHandler
	Loyalty       *handler.LoyaltyHandler
	Realtime      *handler.RealtimeHandler
	Outbox        *handler.OutboxHandler
}

// APIGroups returns the /api/v1 route groups. authenticate guards every
// group except the public catalog.
func APIGroups(h Handlers, authenticate gin.HandlerFunc) []*DomainGroup {
	client := middleware.RequireRoles(account.RoleClient)
	cook := middleware.RequireRoles(account.RoleCook)
	driver := middleware.RequireRoles(account.RoleDriver)

	catalog := NewDomainGroup("catalog", "")
	catalog.GET("/dishes", h.Dishes.Search)
	catalog.GET("/dishes/:id", h.Dishes.Get)
	catalog.GET("/cooks/:id/dishes", h.Dishes.ListByCook)

	accounts := NewDomainGroup("accounts", "/accounts").Use(authenticate)
	accounts.POST("", h.Accounts.Register)
	accounts.GET("/me", h.Accounts.Me)
	accounts.PUT("/me", h.Accounts.UpdateMe)
	accounts.PUT("/me/availability", cook, h.Accounts.SetAvailability)
	accounts.PUT("/me/duty", driver, h.Accounts.SetDuty)
	accounts.PUT("/me/location", driver, h.Accounts.UpdateLocation)
	accounts.POST("/me/devices", h.Accounts.RegisterDevice)

	menu := NewDomainGroup("menu", "/dishes").Use(authenticate, cook)
	menu.POST("", h.Dishes.Create)
	menu.PUT("/:id", h.Dishes.Update)
	menu.PUT("/:id/availability", h.Dishes.SetAvailability)
	menu.DELETE("/:id", h.Dishes.Delete)
	menu.POST("/:id/image-upload-url", h.Dishes.ImageUploadURL)

	orders := NewDomainGroup("orders", "/orders").Use(authenticate)
	orders.POST("", client, h.Orders.Place)
	orders.POST("/cash", client, h.Orders.PlaceCash)
	orders.GET("", h.Orders.List)
	orders.GET("/:id", h.Orders.Get)
	orders.POST("/:id/cancel", h.Orders.Cancel)
	orders.POST("/:id/complete", client, h.Orders.Complete)
	orders.GET("/:id/chat", h.Chat.RoomForOrder)

	kitchen := NewDomainGroup("kitchen", "/cook/orders").Use(authenticate, cook)
	kitchen.GET("/pending", h.Kitchen.Pending)
	kitchen.POST("/:id/accept", h.Kitchen.Accept)
	kitchen.POST("/:id/reject", h.Kitchen.Reject)
	kitchen.POST("/:id/start", h.Kitchen.Start)
	kitchen.POST("/:id/ready", h.Kitchen.Ready)

	delivery := NewDomainGroup("delivery", "/driver").Use(authenticate, driver)
	delivery.GET("/orders/available", h.Delivery.Available)
	delivery.POST("/orders/:id/claim", h.Delivery.Claim)
	delivery.POST("/orders/:id/release", h.Delivery.Release)
	delivery.POST("/orders/:id/pickup", h.Delivery.PickUp)
	delivery.POST("/orders/:id/deliver", h.Delivery.Deliver)
	delivery.POST("/orders/:id/collect-cash", h.Delivery.CollectCash)
	delivery.GET("/cash", h.Delivery.CashBalance)
	delivery.GET("/route", h.Delivery.Route)

	chat := NewDomainGroup("chat", "/chat").Use(authenticate)
	chat.GET("/rooms/:id/messages", h.Chat.Messages)
	chat.POST("/rooms/:id/messages", h.Chat.Send)
	chat.POST("/rooms/:id/read", h.Chat.MarkRead)
	chat.GET("/unread", h.Chat.Unread)

	notifications := NewDomainGroup("notifications", "/notifications").Use(authenticate)
	notifications.GET("", h.Notifications.List)
	notifications.GET("/unread-count", h.Notifications.UnreadCount)
	notifications.POST("/read-all", h.Notifications.MarkAllRead)
	notifications.POST("/:id/read", h.Notifications.MarkRead)

	loyalty := NewDomainGroup("loyalty", "/loyalty").Use(authenticate, client)
	loyalty.GET("", h.Loyalty.Get)
	loyalty.GET("/ledger", h.Loyalty.Ledger)
	loyalty.POST("/quote", h.Loyalty.Quote)

	realtime := NewDomainGroup("realtime", "/ws").Use(authenticate)
	realtime.GET("", h.Realtime.Connect)

	admin := NewDomainGroup("admin", "/admin").Use(authenticate, middleware.RequireRoles(account.RoleAdmin))
	admin.GET("/accounts", h.Accounts.List)
	admin.POST("/accounts/:id/suspend", h.Accounts.Suspend)
	admin.POST("/accounts/:id/reactivate", h.Accounts.Reactivate)
	admin.GET("/orders", h.Orders.ListAll)
	admin.GET("/orders/stats", h.Orders.Stats)
	admin.POST("/orders/:id/assign", h.Delivery.Assign)
	admin.GET("/drivers/:id/cash", h.Orders.DriverCash)
	admin.POST("/drivers/:id/settle-cash", h.Orders.SettleDriverCash)
	admin.POST("/loyalty/:clientId/adjust", h.Loyalty.Adjust)
	admin.GET("/outbox/dead", h.Outbox.GetDeadLetterEntries)
	admin.GET("/outbox/stats", h.Outbox.GetStats)
	admin.POST("/outbox/retry-all", h.Outbox.RetryAllDeadEntries)
	admin.GET("/outbox/:id", h.Outbox.GetEntry)
	admin.POST("/outbox/:id/retry", h.Outbox.RetryDeadEntry)

	return []*DomainGroup{
		catalog, accounts, menu, orders, kitchen, delivery,
		chat, notifications, loyalty, realtime, admin,
	}
}

// UnregisteredRoutes accept a verified token whose subject has no account
var UnregisteredRoutes = []string{"POST /api/v1/accounts"}

// QueryTokenRoutes accept the bearer token as ?token=
var QueryTokenRoutes = []string{"/api/v1/ws"}
