package file

import (
	domain "file-share-api/internal/domain/file"
)

func fromDBModel(model *File) *domain.File {
	var f = &domain.File{
		UUID:      model.UUID,
		OwnerUUID: model.OwnerUUID,

		OriginalFilename: model.OriginalFilename,
		StoredFilename:   model.StoredFilename,
		ContentDigest:    model.Sha256Hash,
		SizeBytes:        model.SizeBytes,
		Description:      model.Description,
		IsPublic:         model.IsPublic,

		CreatedAt: model.UploadTimestamp,
	}

	return f
}

func fromDBModels(models *Files) domain.Files {
	fs := make(domain.Files, len(*models))
	for idx, f := range *models {
		fs[idx] = fromDBModel(f)
	}

	return fs
}
