package models

// Asset описание файла, сохранённого бэкендом после загрузки
type Asset struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Format   string `json:"format"`
	Bytes    int64  `json:"bytes"`
}

// UploadFile файл, полученный от продавца и ещё не отправленный бэкенду
type UploadFile struct {
	Name        string
	ContentType string
	Size        int64
	Data        []byte
}
