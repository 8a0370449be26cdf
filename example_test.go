package reqshape_test

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/reoring/reqshape"
	"github.com/reoring/reqshape/dsl"
)

func signupRegistry() *reqshape.Registry {
	return reqshape.NewRegistry().MustRegister(
		dsl.Shape("Signup").
			Field("email", dsl.String().Email()).Required().
			Field("password", dsl.String().MinLength(8)).Required().
			Field("plan", dsl.String().OneOf("free", "pro")).Default("free").
			MustBuild(),
	)
}

func Example() {
	ctx := context.Background()
	v := reqshape.NewValidator(signupRegistry(), reqshape.DefaultConfig())
	target := reqshape.Ref("Signup")

	res, _ := reqshape.ValidateJSON(ctx, v, []byte(`{"email":"ada@example.com","password":"correct horse","admin":true}`), target, reqshape.DefaultDecodeOpt())
	out, _ := json.Marshal(res.Value)
	fmt.Println(string(out))

	res, _ = reqshape.ValidateJSON(ctx, v, []byte(`{"email":"ada","password":"short"}`), target, reqshape.DefaultDecodeOpt())
	out, _ = json.Marshal(res.Err())
	fmt.Println(string(out))
	// Output:
	// {"email":"ada@example.com","password":"correct horse","plan":"free"}
	// {"message":"Validation failed","errors":{"email":["email must be a valid email"],"password":["password must be longer than or equal to 8 characters"]}}
}

func ExampleStrictConfig() {
	v := reqshape.NewValidator(signupRegistry(), reqshape.StrictConfig())

	res, _ := v.Validate(context.Background(), map[string]any{
		"email":    "ada@example.com",
		"password": "correct horse",
		"admin":    true,
	}, reqshape.Ref("Signup"))
	fmt.Println(res.Accepted(), res.Report()["admin"])
	// Output:
	// false [property admin should not exist]
}

func ExampleBare() {
	v := reqshape.NewValidator(reqshape.NewRegistry(), reqshape.DefaultConfig())

	res, _ := v.Validate(context.Background(), "  untouched  ", reqshape.Bare(reqshape.KindString))
	fmt.Printf("%q\n", res.Value)
	// Output:
	// "  untouched  "
}
