// Package main provides the AWS Lambda entry point for the value distribution calculator.
// It serves the same routes as the HTTP server behind a Lambda function URL.
package main

import (
	"context"
	"encoding/base64"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/mpz/devops/tools/value-distribution/internal/app"
	"github.com/mpz/devops/tools/value-distribution/internal/config"
	"github.com/mpz/devops/tools/value-distribution/internal/jsonutil"
)

var appInst *app.App

func init() {
	cfg, err := config.NewConfig()
	if err != nil {
		panic("config init failed: " + err.Error())
	}

	appInst, err = app.New(context.Background(), cfg)
	if err != nil {
		panic("app init failed: " + err.Error())
	}
}

// toRequest converts a function URL event into an app.Request.
func toRequest(event events.LambdaFunctionURLRequest) (app.Request, error) {
	body := []byte(event.Body)
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(event.Body)
		if err != nil {
			return app.Request{}, err
		}
		body = decoded
	}

	headers := make(map[string]string, len(event.Headers))
	for key, value := range event.Headers {
		headers[strings.ToLower(key)] = value
	}

	path := event.RawPath
	if path == "" {
		path = "/"
	}

	return app.Request{
		Type:    app.RequestTypeLambda,
		Method:  event.RequestContext.HTTP.Method,
		Path:    path,
		Headers: headers,
		Body:    body,
	}, nil
}

// toResponse converts an app.Response into a function URL response.
func toResponse(resp app.Response) events.LambdaFunctionURLResponse {
	headers := make(map[string]string, len(resp.Headers)+1)
	for key, value := range resp.Headers {
		headers[key] = value
	}
	if resp.ContentType != "" {
		if _, ok := headers["Content-Type"]; !ok {
			headers["Content-Type"] = resp.ContentType
		}
	}

	return events.LambdaFunctionURLResponse{
		StatusCode: resp.StatusCode,
		Headers:    headers,
		Body:       string(resp.Body),
	}
}

func handler(ctx context.Context, event events.LambdaFunctionURLRequest) (events.LambdaFunctionURLResponse, error) {
	req, err := toRequest(event)
	if err != nil {
		return events.LambdaFunctionURLResponse{
			StatusCode: 400,
			Headers:    map[string]string{"Content-Type": "application/json"},
			Body:       string(jsonutil.ErrorBody("invalid base64 body")),
		}, nil
	}

	return toResponse(appInst.HandleRequest(ctx, req)), nil
}

func main() {
	lambda.Start(handler)
}
