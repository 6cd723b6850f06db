package entity

import "time"

type DetectionLog struct {
	ID            string    `db:"id"`
	RequestID     string    `db:"request_id"`
	Source        string    `db:"source"`
	PayloadLength int       `db:"payload_length"`
	DecodedLength int       `db:"decoded_length"`
	Checksum      string    `db:"checksum"`
	Format        string    `db:"format"`
	Width         int       `db:"width"`
	Height        int       `db:"height"`
	Mode          string    `db:"mode"`
	Result        string    `db:"result"`
	ErrorMessage  string    `db:"error_message"`
	Archive       string    `db:"archive_location"`
	CreatedAt     time.Time `db:"created_at"`
}
