package file

import (
	"file-share-api/internal/domain/file"
)

func ToResponseFile(fDomain file.File) File {
	var f = File{
		UUID:             fDomain.UUID,
		OwnerUUID:        fDomain.OwnerUUID,
		OriginalFilename: fDomain.OriginalFilename,
		ContentDigest:    fDomain.ContentDigest,
		SizeBytes:        fDomain.SizeBytes,
		Description:      fDomain.Description,
		IsPublic:         fDomain.IsPublic,
		CreatedAt:        fDomain.CreatedAt,
	}

	return f
}

func ToResponseFiles(fDomain file.Files) Files {
	fs := make(Files, len(fDomain))
	for idx, f := range fDomain {
		fs[idx] = ToResponseFile(*f)
	}

	return fs
}
