package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/Mohsinkhani/hotel-management-sub000/internal/models"
)

// CSVHeader 导出列
var CSVHeader = []string{
	"id", "name", "email", "phone", "room", "price", "check_in", "check_out", "status",
}

// ExportCSV 按行写出预订，找不到房间时房间名和价格留空
func ExportCSV(w io.Writer, rows []*models.Reservation, catalog []*models.Room) error {
	rooms := make(map[int64]*models.Room, len(catalog))
	for _, room := range catalog {
		rooms[room.ID] = room
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}

	for _, r := range rows {
		roomName, price := "", ""
		if room, ok := rooms[r.RoomID]; ok {
			roomName = room.Name
			price = strconv.FormatFloat(room.Price, 'f', 2, 64)
		}
		record := []string{
			r.ID,
			r.GuestName(),
			r.Email,
			r.Phone,
			roomName,
			price,
			r.CheckInDate.Format(dateLayout),
			r.CheckOutDate.Format(dateLayout),
			r.Status,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
