package detectionRepository

const (
	queryCreateDetectionLogsTable = `
		CREATE TABLE IF NOT EXISTS detection_logs (
			id               VARCHAR(26) PRIMARY KEY,
			request_id       VARCHAR(64) NOT NULL,
			source           VARCHAR(16) NOT NULL,
			payload_length   INTEGER NOT NULL DEFAULT 0,
			decoded_length   INTEGER NOT NULL DEFAULT 0,
			checksum         VARCHAR(64) NOT NULL DEFAULT '',
			format           VARCHAR(16) NOT NULL DEFAULT '',
			width            INTEGER NOT NULL DEFAULT 0,
			height           INTEGER NOT NULL DEFAULT 0,
			mode             VARCHAR(16) NOT NULL DEFAULT '',
			result           TEXT NOT NULL DEFAULT '',
			error_message    TEXT NOT NULL DEFAULT '',
			archive_location TEXT NOT NULL DEFAULT '',
			created_at       TIMESTAMPTZ NOT NULL
		)
	`

	queryCreateDetectionLog = `
		INSERT INTO detection_logs (
			id,
			request_id,
			source,
			payload_length,
			decoded_length,
			checksum,
			format,
			width,
			height,
			mode,
			result,
			error_message,
			archive_location,
			created_at
		) VALUES (
			:id,
			:request_id,
			:source,
			:payload_length,
			:decoded_length,
			:checksum,
			:format,
			:width,
			:height,
			:mode,
			:result,
			:error_message,
			:archive_location,
			:created_at
		)
	`

	queryGetRecentDetectionLogs = `
		SELECT
			id,
			request_id,
			source,
			payload_length,
			decoded_length,
			checksum,
			format,
			width,
			height,
			mode,
			result,
			error_message,
			archive_location,
			created_at
		FROM detection_logs
		ORDER BY created_at DESC
		LIMIT :limit
	`
)
