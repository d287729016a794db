package handler

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/hitoshi/easystock/internal/model"
	"go.mongodb.org/mongo-driver/bson"
)

// maxBodyBytes はリクエストボディの最大サイズ。
const maxBodyBytes = 1 << 20

// decodeDocument はリクエストボディをRelaxed Extended JSONとして読み取る。
// 整数はint32/int64、小数はdoubleとして保存される。
// ボディが空の場合は空のドキュメントを返す。
// JSONオブジェクト以外（配列・スカラー・不正なJSON）はINVALID_REQUESTとする。
func decodeDocument(w http.ResponseWriter, r *http.Request) (model.Document, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, model.NewInvalidRequestError("body too large")
		}
		return nil, model.NewInvalidRequestError("failed to read body")
	}

	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return model.Document{}, nil
	}
	if body[0] != '{' {
		return nil, model.NewInvalidRequestError("body must be a JSON object")
	}

	doc := model.Document{}
	if err := bson.UnmarshalExtJSON(body, false, &doc); err != nil {
		return nil, model.NewInvalidRequestError("malformed JSON")
	}
	return doc, nil
}
