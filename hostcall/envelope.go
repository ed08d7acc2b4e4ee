package hostcall

import (
	"context"
	"net/http"

	"github.com/fxamacker/cbor/v2"

	"github.com/wippyai/textcodec"
	"github.com/wippyai/textcodec/errors"
)

var (
	cborEncMode cbor.EncMode
	cborDecMode cbor.DecMode
)

func init() {
	var err error
	// Canonical encoding keeps envelopes byte-identical across hosts
	cborEncMode, err = cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	cborDecMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic(err)
	}
}

// Request is one bridge call on the wire.
type Request struct {
	Op      string `cbor:"op"`
	Payload []byte `cbor:"payload"`
}

// Response carries either Data (Status 200) or a flattened *errors.Error.
type Response struct {
	Status  int    `cbor:"status"`
	Phase   string `cbor:"phase,omitempty"`
	Kind    string `cbor:"kind,omitempty"`
	Op      string `cbor:"op,omitempty"`
	Message string `cbor:"message,omitempty"`
	Cause   string `cbor:"cause,omitempty"`
	Data    []byte `cbor:"data,omitempty"`
}

func EncodeRequest(op string, payload []byte) ([]byte, error) {
	b, err := cborEncMode.Marshal(&Request{Op: op, Payload: payload})
	if err != nil {
		return nil, errors.New(errors.PhaseBridge, errors.KindInvalidPayload).
			Op(op).Detail("encode request").Cause(err).Build()
	}
	return b, nil
}

func DecodeRequest(data []byte) (*Request, error) {
	var req Request
	if err := cborDecMode.Unmarshal(data, &req); err != nil {
		return nil, errors.New(errors.PhaseBridge, errors.KindInvalidPayload).
			Detail("decode request").Cause(err).Build()
	}
	return &req, nil
}

func EncodeResponse(resp *Response) ([]byte, error) {
	b, err := cborEncMode.Marshal(resp)
	if err != nil {
		return nil, errors.New(errors.PhaseBridge, errors.KindInvalidPayload).
			Op(resp.Op).Detail("encode response").Cause(err).Build()
	}
	return b, nil
}

func DecodeResponse(data []byte) (*Response, error) {
	var resp Response
	if err := cborDecMode.Unmarshal(data, &resp); err != nil {
		return nil, errors.New(errors.PhaseBridge, errors.KindInvalidPayload).
			Detail("decode response").Cause(err).Build()
	}
	return &resp, nil
}

// NewResponse builds the envelope for the outcome of a call to op.
func NewResponse(op string, data []byte, err error) *Response {
	if err == nil {
		return &Response{Status: http.StatusOK, Data: data}
	}

	resp := &Response{Status: StatusFromError(err), Op: op, Message: err.Error()}
	if e, ok := errors.As(err); ok {
		resp.Phase = string(e.Phase)
		resp.Kind = string(e.Kind)
		resp.Message = e.Detail
		if e.Op != "" {
			resp.Op = e.Op
		}
		if e.Cause != nil {
			resp.Cause = e.Cause.Error()
		}
	}
	return resp
}

// Err returns nil for a 200 response and the carried error otherwise.
func (r *Response) Err() error {
	if r.Status == http.StatusOK {
		return nil
	}
	if r.Kind == "" {
		return ErrorFromStatus(r.Status, r.Op, r.Message)
	}

	e := &errors.Error{
		Phase:  errors.Phase(r.Phase),
		Kind:   errors.Kind(r.Kind),
		Op:     r.Op,
		Detail: r.Message,
	}
	if r.Cause != "" {
		e.Cause = remoteError(r.Cause)
	}
	return e
}

// Serve decodes a request envelope, invokes it on b and returns the encoded
// response. Failures, including an undecodable request, are reported
// inside the response; nil is returned only if the response itself cannot
// be encoded.
func Serve(ctx context.Context, b textcodec.Bridge, request []byte) []byte {
	var resp *Response

	req, err := DecodeRequest(request)
	if err != nil {
		resp = NewResponse("", nil, err)
	} else {
		data, err := b.Invoke(ctx, req.Op, req.Payload)
		resp = NewResponse(req.Op, data, err)
	}

	out, err := EncodeResponse(resp)
	if err != nil {
		Logger().Error("encode response failed")
		return nil
	}
	return out
}

// StatusFromError maps an error to its envelope status code.
func StatusFromError(err error) int {
	if err == nil {
		return http.StatusOK
	}

	kind, _ := errors.KindOf(err)
	switch kind {
	case errors.KindInvalidPayload, errors.KindInvalidInput:
		return http.StatusBadRequest
	case errors.KindUnknownOp, errors.KindNotFound:
		return http.StatusNotFound
	case errors.KindPayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case errors.KindLimitExceeded:
		return http.StatusTooManyRequests
	case errors.KindHostUnavailable, errors.KindTransport:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ErrorFromStatus builds an error for a status that arrived without a kind.
func ErrorFromStatus(status int, op, message string) error {
	var (
		phase = errors.PhaseBridge
		kind  errors.Kind
	)

	switch status {
	case http.StatusOK:
		return nil
	case http.StatusBadRequest:
		kind = errors.KindInvalidPayload
	case http.StatusNotFound:
		kind = errors.KindUnknownOp
	case http.StatusRequestEntityTooLarge:
		kind = errors.KindPayloadTooLarge
	case http.StatusTooManyRequests:
		phase, kind = errors.PhaseHost, errors.KindLimitExceeded
	case http.StatusServiceUnavailable:
		kind = errors.KindHostUnavailable
	default:
		phase, kind = errors.PhaseHost, errors.KindHandler
	}

	return errors.New(phase, kind).Op(op).Value(status).Detail("%s", message).Build()
}

type remoteError string

func (e remoteError) Error() string { return string(e) }
