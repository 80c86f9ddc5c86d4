package lambda

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	awslambda "github.com/aws/aws-lambda-go/lambda"
	echoadapter "github.com/awslabs/aws-lambda-go-api-proxy/echo"
	"github.com/labstack/echo/v4"
)

type LambdaHandler func(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error)

// Hooks run around the function lifecycle. AfterInvoke runs before each
// response is returned, while the execution environment is still thawed.
// Shutdown runs on SIGTERM.
type Hooks struct {
	AfterInvoke func(ctx context.Context)
	Shutdown    func()
}

// NewLambdaHandler serves the echo router behind an API Gateway HTTP API.
func NewLambdaHandler(e *echo.Echo, hooks Hooks) LambdaHandler {
	adapter := echoadapter.NewV2(e)
	return func(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		resp, err := adapter.ProxyWithContext(ctx, req)
		if hooks.AfterInvoke != nil {
			hooks.AfterInvoke(ctx)
		}
		return resp, err
	}
}

// Start blocks serving Lambda invocations.
func Start(e *echo.Echo, hooks Hooks) {
	var opts []awslambda.Option
	if hooks.Shutdown != nil {
		opts = append(opts, awslambda.WithEnableSIGTERM(hooks.Shutdown))
	}
	awslambda.StartWithOptions(NewLambdaHandler(e, hooks), opts...)
}
