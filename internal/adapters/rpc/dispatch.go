package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"walletmail/go-client/internal/mailbox"
	"walletmail/go-client/internal/wallet"
	"walletmail/go-client/pkg/models"
)

var errInvalidParams = errors.New("invalid params")

func (s *Server) dispatchRPC(r *http.Request, method string, rawParams json.RawMessage) (any, *rpcError) {
	switch method {
	case "health_check":
		return map[string]string{"status": "ok"}, nil

	case "wallet.generate_seed":
		mnemonic, err := wallet.GenerateMnemonic()
		if err != nil {
			return nil, rpcServiceError(-32011, err)
		}
		signer, err := wallet.NewLocalSigner(mnemonic)
		if err != nil {
			return nil, rpcServiceError(-32011, err)
		}
		s.setSigner(signer)
		return map[string]string{"mnemonic": mnemonic, "wallet_address": signer.Address()}, nil

	case "wallet.import_seed":
		return callWithSingleStringParam(rawParams, -32012, func(mnemonic string) (any, error) {
			signer, err := wallet.NewLocalSigner(mnemonic)
			if err != nil {
				return nil, err
			}
			s.setSigner(signer)
			return map[string]string{"wallet_address": signer.Address()}, nil
		})

	case "wallet.address":
		signer, rpcErr := s.currentSigner()
		if rpcErr != nil {
			return nil, rpcErr
		}
		return map[string]string{"wallet_address": signer.Address()}, nil

	case "mailbox.unlock":
		return s.callUnlock(r, rawParams, s.manager.Unlock)

	case "mailbox.switch":
		return s.callUnlock(r, rawParams, s.manager.SwitchMailbox)

	case "mailbox.lock":
		signer, rpcErr := s.currentSigner()
		if rpcErr != nil {
			return nil, rpcErr
		}
		return callWithSingleStringParam(rawParams, -32014, func(pin string) (any, error) {
			locked, err := s.manager.Lock(signer.Address(), pin)
			if err != nil {
				return nil, err
			}
			return map[string]bool{"locked": locked}, nil
		})

	case "mailbox.lock_id":
		return callWithSingleStringParam(rawParams, -32014, func(mailboxID string) (any, error) {
			return map[string]bool{"locked": s.manager.LockID(mailboxID)}, nil
		})

	case "mailbox.lock_all":
		s.manager.LockAll()
		return map[string]bool{"locked": true}, nil

	case "mailbox.is_unlocked":
		return callWithSingleStringParam(rawParams, -32015, func(mailboxID string) (any, error) {
			return map[string]bool{"unlocked": s.manager.IsUnlocked(mailboxID)}, nil
		})

	case "mailbox.status":
		return s.manager.Status(), nil

	case "persistence.enable":
		s.manager.EnablePersistence()
		return map[string]bool{"enabled": true}, nil

	case "persistence.disable":
		if err := s.manager.DisablePersistence(); err != nil {
			return nil, rpcServiceError(-32016, err)
		}
		return map[string]bool{"enabled": false}, nil

	default:
		return nil, &rpcError{Code: -32601, Message: "method not found"}
	}
}

// callUnlock threads the request context and the daemon signer through
// Unlock or SwitchMailbox, taking the pin as the single positional param.
func (s *Server) callUnlock(
	r *http.Request,
	rawParams json.RawMessage,
	unlock func(ctx context.Context, signer wallet.Signer, walletAddress, pin string) (models.SessionInfo, error),
) (any, *rpcError) {
	signer, rpcErr := s.currentSigner()
	if rpcErr != nil {
		return nil, rpcErr
	}
	pin, err := decodeSingleStringParam(rawParams)
	if err != nil {
		return nil, rpcInvalidParams()
	}
	info, err := unlock(r.Context(), signer, signer.Address(), pin)
	if err != nil {
		return nil, mapUnlockRPCError(err)
	}
	return info, nil
}

func mapUnlockRPCError(err error) *rpcError {
	switch {
	case errors.Is(err, mailbox.ErrTooManyAttempts):
		return &rpcError{Code: -32030, Message: err.Error()}
	case errors.Is(err, wallet.ErrSignatureRejected):
		return &rpcError{Code: -32031, Message: err.Error()}
	default:
		return &rpcError{Code: -32013, Message: err.Error()}
	}
}

func decodeSingleStringParam(raw json.RawMessage) (string, error) {
	var arr []string
	if err := json.Unmarshal(raw, &arr); err == nil && len(arr) == 1 && arr[0] != "" {
		return arr[0], nil
	}
	return "", errInvalidParams
}

func callWithSingleStringParam(rawParams json.RawMessage, serviceErrCode int, call func(string) (any, error)) (any, *rpcError) {
	param, err := decodeSingleStringParam(rawParams)
	if err != nil {
		return nil, rpcInvalidParams()
	}
	result, err := call(param)
	if err != nil {
		return nil, rpcServiceError(serviceErrCode, err)
	}
	return result, nil
}

func rpcInvalidParams() *rpcError {
	return &rpcError{Code: -32602, Message: "invalid params"}
}

func rpcServiceError(code int, err error) *rpcError {
	return &rpcError{Code: code, Message: err.Error()}
}
