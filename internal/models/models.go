package models

// All 返回需要迁移的全部模型
func All() []interface{} {
	return []interface{}{
		&Room{},
		&Reservation{},
		&CheckIn{},
		&ReservationStatusEvent{},
	}
}
