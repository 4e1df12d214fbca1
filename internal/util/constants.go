package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

// 课程资料上传
const (
	MaxMaterialSize = 50 << 20
	MimeImage       = "image/"
	MimePDF         = "application/pdf"
	MimeOctetStream = "application/octet-stream"
)

var AllowedMaterialExtensions = []string{".pdf", ".png", ".jpg", ".jpeg", ".mp3", ".mp4", ".txt", ".docx", ".pptx"}

const (
	DashboardAnnouncementLimit = 5
	AnnouncementListLimit      = 20
	RecentUsersLimit           = 10
)
