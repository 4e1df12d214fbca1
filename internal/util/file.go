package util

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"
)

// 课程资料允许的 MIME 前缀；docx/pptx 的嗅探结果为 zip
var allowedMaterialTypes = []string{
	MimeImage, MimePDF, "audio/", "video/", "text/plain", "application/zip", MimeOctetStream,
}

var ErrInvalidFileType = errors.New("invalid file type")

// SniffContentType 读取前 512 字节判断 MIME，返回的 reader 仍包含完整内容
func SniffContentType(reader io.Reader) (string, io.Reader, error) {
	buffer := make([]byte, 512)
	n, err := io.ReadFull(reader, buffer)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", nil, err
	}
	head := buffer[:n]

	return http.DetectContentType(head), io.MultiReader(bytes.NewReader(head), reader), nil
}

// ValidateMaterialType 深度校验课程资料 MIME 类型
func ValidateMaterialType(reader io.Reader) (string, io.Reader, error) {
	mimeType, full, err := SniffContentType(reader)
	if err != nil {
		return "", nil, err
	}

	for _, allowed := range allowedMaterialTypes {
		if strings.HasPrefix(mimeType, allowed) {
			return mimeType, full, nil
		}
	}

	return mimeType, nil, ErrInvalidFileType
}
