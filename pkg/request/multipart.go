package request

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"sort"
)

// buildMultipart 构建 multipart/form-data 请求体
// 文件字段名为 files[i]，JSON 请求体放在 payload_json 字段
func buildMultipart(form map[string]string, files []File, payloadJSON []byte) ([]byte, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(form))
	for k := range form {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := writer.WriteField(k, form[k]); err != nil {
			return nil, "", ErrMarshal.WithError(err)
		}
	}

	for i, f := range files {
		if len(f.Contents) == 0 {
			continue
		}
		part, err := writer.CreateFormFile(fmt.Sprintf("files[%d]", i), f.Name)
		if err != nil {
			return nil, "", ErrMarshal.WithError(err)
		}
		if _, err := io.Copy(part, bytes.NewReader(f.Contents)); err != nil {
			return nil, "", ErrMarshal.WithError(err)
		}
	}

	if len(payloadJSON) > 0 {
		if err := writer.WriteField("payload_json", string(payloadJSON)); err != nil {
			return nil, "", ErrMarshal.WithError(err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", ErrMarshal.WithError(err)
	}
	return buf.Bytes(), writer.FormDataContentType(), nil
}
