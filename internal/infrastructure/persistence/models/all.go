package models

// AllModels lists every model for AutoMigrate in tests
func AllModels() []any {
	return []any{
		&AccountModel{},
		&DeviceModel{},
		&DishModel{},
		&OrderModel{},
		&OrderItemModel{},
		&OrderSequenceModel{},
		&ChatRoomModel{},
		&ChatParticipantModel{},
		&ChatMessageModel{},
		&NotificationModel{},
		&LoyaltyAccountModel{},
		&LoyaltyEntryModel{},
		&OutboxEntryModel{},
	}
}
