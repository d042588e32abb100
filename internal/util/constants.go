package util

// DateFormat keys practice sessions by calendar day for streak counting.
const DateFormat = "2006-01-02"

const (
	StorageLocal = "local"
	StorageMinio = "minio"
)

const (
	ContentStoreGitHub = "github"
	ContentStoreGit    = "git"
	ContentStoreMemory = "memory"
)

const MimeImage = "image/"
