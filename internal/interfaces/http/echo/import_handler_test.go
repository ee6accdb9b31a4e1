package echo_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus/hooks/test"

	app "github.com/mohammadpnp/employee-import/internal/application/employee"
	httpecho "github.com/mohammadpnp/employee-import/internal/interfaces/http/echo"
)

type fakeImportUseCase struct {
	output app.StartEmployeeImportOutput
	err    error
	got    app.StartEmployeeImportInput
	called bool
}

func (f *fakeImportUseCase) Execute(ctx context.Context, in app.StartEmployeeImportInput) (app.StartEmployeeImportOutput, error) {
	f.called = true
	f.got = in
	if f.err != nil {
		return app.StartEmployeeImportOutput{}, f.err
	}
	return f.output, nil
}

func newImportServer(useCase app.StartEmployeeImport) *echo.Echo {
	logger, _ := test.NewNullLogger()
	e := echo.New()
	httpecho.RegisterRoutes(e, httpecho.NewImportHandler(useCase, "https://imports.example.com/", logger), nil)
	return e
}

func multipartRequest(t *testing.T, fields map[string]string, fileName string, content []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if fileName != "" {
		part, err := writer.CreateFormFile("file", fileName)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write(content); err != nil {
			t.Fatalf("write file: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/imports/employees", &body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	return req
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var got map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unexpected json: %v", err)
	}
	return got
}

func TestImportHandlerSuccess(t *testing.T) {
	t.Parallel()

	useCase := &fakeImportUseCase{output: app.StartEmployeeImportOutput{
		ImportID: "import-1",
		Batches:  3,
		Message:  "Queued 3 job(s).",
		Status:   "queued",
	}}
	e := newImportServer(useCase)

	req := multipartRequest(t, map[string]string{"has_header": "false", "chunk_size": "2", "notify_done": "0"}, "staff.csv", []byte("John,j@x.com\n"))
	req.Header.Set("X-User-ID", "4f2c64c5-2d1b-4f7e-9a55-0b6d8c9f3e21")
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}

	data, ok := decodeResponse(t, rec)["data"].(map[string]any)
	if !ok {
		t.Fatalf("unexpected data payload: %s", rec.Body.String())
	}
	if data["import_id"] != "import-1" || data["message"] != "Queued 3 job(s)." {
		t.Fatalf("unexpected data: %#v", data)
	}
	if data["status_url"] != "https://imports.example.com/api/v1/imports/import-1" {
		t.Fatalf("unexpected status_url: %#v", data["status_url"])
	}

	in := useCase.got
	if in.FileName != "staff.csv" || string(in.Content) != "John,j@x.com\n" {
		t.Fatalf("unexpected upload: %s %q", in.FileName, in.Content)
	}
	if in.HasHeader || in.NotifyDone || in.ChunkSize != 2 {
		t.Fatalf("unexpected options: %+v", in)
	}
	if in.RequestedBy != "4f2c64c5-2d1b-4f7e-9a55-0b6d8c9f3e21" {
		t.Fatalf("unexpected requester: %s", in.RequestedBy)
	}
}

func TestImportHandlerDefaults(t *testing.T) {
	t.Parallel()

	useCase := &fakeImportUseCase{output: app.StartEmployeeImportOutput{ImportID: "import-1", Status: "queued"}}
	e := newImportServer(useCase)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, multipartRequest(t, nil, "staff.csv", []byte("name\nA\n")))

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	if !useCase.got.HasHeader || !useCase.got.NotifyDone || useCase.got.ChunkSize != 0 {
		t.Fatalf("unexpected defaults: %+v", useCase.got)
	}
}

func TestImportHandlerInvalidForm(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		fields    map[string]string
		requester string
	}{
		"bad boolean":   {fields: map[string]string{"has_header": "maybe"}},
		"bad chunk":     {fields: map[string]string{"chunk_size": "ten"}},
		"decimal chunk": {fields: map[string]string{"chunk_size": "1.5"}},
		"bad requester": {requester: "not-a-uuid"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			useCase := &fakeImportUseCase{}
			e := newImportServer(useCase)

			req := multipartRequest(t, tc.fields, "staff.csv", []byte("name\nA\n"))
			if tc.requester != "" {
				req.Header.Set("X-User-ID", tc.requester)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			if useCase.called {
				t.Fatal("expected use case not to be called")
			}
		})
	}
}

func TestImportHandlerMissingFile(t *testing.T) {
	t.Parallel()

	useCase := &fakeImportUseCase{}
	e := newImportServer(useCase)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, multipartRequest(t, map[string]string{"has_header": "true"}, "", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	body := decodeResponse(t, rec)["error"].(map[string]any)
	if body["code"] != "invalid_upload" {
		t.Fatalf("unexpected error code: %#v", body["code"])
	}
	if useCase.called {
		t.Fatal("expected use case not to be called")
	}
}

func TestImportHandlerErrorMapping(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		err  error
		code int
		body string
	}{
		"unsupported format": {err: app.ErrUnsupportedFormat, code: http.StatusBadRequest, body: "invalid_upload"},
		"no valid rows":      {err: app.ErrNoValidRows, code: http.StatusBadRequest, body: "invalid_upload"},
		"no spreadsheet":     {err: app.ErrSpreadsheetUnsupported, code: http.StatusUnprocessableEntity, body: "dependency_unavailable"},
		"queue down":         {err: errors.New("boom"), code: http.StatusInternalServerError, body: "internal_error"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			e := newImportServer(&fakeImportUseCase{err: tc.err})
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, multipartRequest(t, nil, "staff.csv", []byte("name\nA\n")))

			if rec.Code != tc.code {
				t.Fatalf("expected %d, got %d", tc.code, rec.Code)
			}
			body := decodeResponse(t, rec)["error"].(map[string]any)
			if body["code"] != tc.body {
				t.Fatalf("expected %s, got %#v", tc.body, body["code"])
			}
		})
	}
}
