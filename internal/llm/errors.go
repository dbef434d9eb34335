package llm

import (
	"encoding/json"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/genai"

	"github.com/subhasish12345/SHOPSAGE/internal/model"
)

// statusError classifies a non-200 HTTP reply. message is the provider's
// own error text when it sent one; otherwise the body is used.
func statusError(provider string, status int, message string, body []byte) *model.Error {
	if message == "" {
		message = strings.TrimSpace(string(body))
	}
	return model.FromStatus(provider, status, message)
}

// transportError classifies a failure to reach the provider at all.
func transportError(provider string, err error) *model.Error {
	return model.Classify(provider, err)
}

// malformedReply reports a 200 reply whose body could not be decoded.
func malformedReply(provider string, err error) *model.Error {
	e := model.NewFatal(model.ReasonUnknown, "undecodable reply: "+err.Error()).Wrap(err)
	e.Provider = provider
	return e
}

// classifyOpenAI maps go-openai errors onto model errors.
func classifyOpenAI(provider string, err error) *model.Error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return model.FromStatus(provider, apiErr.HTTPStatusCode, apiErr.Message).Wrap(err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		msg := ""
		if reqErr.Err != nil {
			msg = reqErr.Err.Error()
		}
		return model.FromStatus(provider, reqErr.HTTPStatusCode, msg).Wrap(err)
	}
	return model.Classify(provider, err)
}

// classifyGenAI maps Gemini SDK errors onto model errors.
func classifyGenAI(provider string, err error) *model.Error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return model.FromStatus(provider, apiErr.Code, apiErr.Message).Wrap(err)
	}
	return model.Classify(provider, err)
}

// errorMessage pulls a human readable message out of a JSON error body of
// the form {"error": {"message": "..."}} or {"error": "..."}.
func errorMessage(body []byte) string {
	var withObject struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &withObject) == nil && withObject.Error.Message != "" {
		return withObject.Error.Message
	}
	var withString struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &withString) == nil {
		return withString.Error
	}
	return ""
}
