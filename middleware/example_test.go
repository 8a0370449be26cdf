package middleware_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/reoring/reqshape"
	"github.com/reoring/reqshape/dsl"
	"github.com/reoring/reqshape/middleware"
)

func ExampleValidate() {
	reg := reqshape.NewRegistry().MustRegister(
		dsl.Shape("Note").
			Field("title", dsl.String().NotEmpty().MaxLength(80)).Required().
			Field("tags", dsl.ArrayOf(dsl.String()).MaxItems(3)).
			MustBuild(),
	)
	v := reqshape.NewValidator(reg, reqshape.DefaultConfig())

	create := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		note, _ := middleware.ObjectFromContext(r.Context())
		middleware.WriteJSON(w, http.StatusCreated, note)
	})
	h := middleware.Validate(v, reqshape.Ref("Note"), middleware.DefaultOptions())(create)

	for _, body := range []string{
		`{"title":"groceries","tags":["home"],"pinned":true}`,
		`{"title":" ","tags":["a","b","c","d"]}`,
	} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/notes", strings.NewReader(body)))
		fmt.Println(rec.Code, strings.TrimSpace(rec.Body.String()))
	}
	// Output:
	// 201 {"tags":["home"],"title":"groceries"}
	// 400 {"message":"Validation failed","errors":{"tags":["tags must contain no more than 3 elements"],"title":["title should not be empty"]}}
}
