package file

const (
	SelectFileByUUID = `
		SELECT f.id, f.uuid, u.uuid, f.original_filename, f.stored_filename, f.sha256_hash, f.size_bytes, f.description, f.is_public, f.upload_timestamp
		FROM file_metadata f
		JOIN users u ON u.id = f.owner_id
		WHERE f.uuid = $1
	`
	SelectPublicFiles = `
		SELECT f.id, f.uuid, u.uuid, f.original_filename, f.stored_filename, f.sha256_hash, f.size_bytes, f.description, f.is_public, f.upload_timestamp
		FROM file_metadata f
		JOIN users u ON u.id = f.owner_id
		WHERE f.is_public
		ORDER BY f.upload_timestamp DESC
		LIMIT 50 OFFSET ( ($1 - 1) * 50 )
	`
	SelectOwnedFiles = `
		SELECT f.id, f.uuid, u.uuid, f.original_filename, f.stored_filename, f.sha256_hash, f.size_bytes, f.description, f.is_public, f.upload_timestamp
		FROM file_metadata f
		JOIN users u ON u.id = f.owner_id
		WHERE f.owner_id = $1 AND ( $2::boolean IS NULL OR f.is_public = $2 )
		ORDER BY f.upload_timestamp DESC
		LIMIT 50 OFFSET ( ($3 - 1) * 50 )
	`
	InsertFile = `
		INSERT INTO file_metadata (owner_id, original_filename, stored_filename, sha256_hash, size_bytes, description, is_public)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING
		  id, uuid, (SELECT u.uuid FROM users u WHERE u.id = file_metadata.owner_id),
		  original_filename, stored_filename, sha256_hash, size_bytes, description, is_public, upload_timestamp
	`
	DeleteFileByUUID = `DELETE FROM file_metadata WHERE uuid = $1`
	DeleteFilesByOwner = `
		DELETE FROM file_metadata
		WHERE owner_id = $1
		RETURNING
		  id, uuid, (SELECT u.uuid FROM users u WHERE u.id = file_metadata.owner_id),
		  original_filename, stored_filename, sha256_hash, size_bytes, description, is_public, upload_timestamp
	`
)
