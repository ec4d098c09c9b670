// Package handlers provides API endpoint handling functionality.

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"net/http"
	"strings"
	"time"

	handlersErrors "github.com/boostup/smmpanel/internal/api/rest/errors"
	"github.com/boostup/smmpanel/internal/config"
	"github.com/boostup/smmpanel/internal/models/modeldto"
	"github.com/boostup/smmpanel/internal/service/processor/v1"
	serviceErrors "github.com/boostup/smmpanel/internal/service/processor/v1/errors"
	processorImpl "github.com/boostup/smmpanel/internal/service/processor/v1/processor"
	storageErrors "github.com/boostup/smmpanel/internal/storage/v1/errors"
	"github.com/go-chi/chi"
	"github.com/rs/zerolog"
)

// Handler defines attributes of a struct available to its methods.
type Handler struct {
	service      processor.Processor
	serverConfig *config.ServerConfig
	log          *zerolog.Logger
}

// InitHandlers initializes a handler object.
func InitHandlers(mainService processor.Processor, serverConfig *config.ServerConfig, log *zerolog.Logger) (*Handler, error) {
	if mainService == nil {
		return nil, &handlersErrors.HandlersFoundNilArgument{Msg: "nil processor was passed to handlers initializer"}
	}
	return &Handler{service: mainService, serverConfig: serverConfig, log: log}, nil
}

// HandleRegister processes user register requests.
func (h *Handler) HandleRegister() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		b, err := ioutil.ReadAll(r.Body)
		if err != nil {
			h.log.Error().Err(err).Msg("HandleRegister failed")
			h.writeMessage(w, http.StatusInternalServerError, err.Error())
			return
		}
		var register modeldto.RegisterRequest
		err = json.Unmarshal(b, &register)
		if err != nil {
			h.log.Error().Err(err).Msg("HandleRegister failed")
			h.writeMessage(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Info().Msg(fmt.Sprintf("new user register request detected for %s", register.Email))
		if len(register.Email) == 0 || len(register.Password) == 0 || len(register.Name) == 0 {
			h.log.Error().Msg("HandleRegister failed")
			h.writeMessage(w, http.StatusBadRequest, "empty values are not allowed")
			return
		}
		accessToken, user, err := h.service.AddNewUser(ctx, register)
		if err != nil {
			h.log.Error().Err(err).Msg("HandleRegister failed")
			var contextTimeoutExceededError *storageErrors.ContextTimeoutExceededError
			var alreadyExistsError *storageErrors.AlreadyExistsError
			if errors.As(err, &contextTimeoutExceededError) {
				h.writeMessage(w, http.StatusGatewayTimeout, err.Error())
			} else if errors.As(err, &alreadyExistsError) {
				h.writeMessage(w, http.StatusBadRequest, "email already registered")
			} else {
				h.writeMessage(w, http.StatusInternalServerError, err.Error())
			}
			return
		}
		h.writeJSON(w, http.StatusOK, modeldto.AuthResponse{Token: accessToken, User: user})
	}
}

// HandleLogin processes user login requests.
func (h *Handler) HandleLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		b, err := ioutil.ReadAll(r.Body)
		if err != nil {
			h.log.Error().Err(err).Msg("HandleLogin failed")
			h.writeMessage(w, http.StatusInternalServerError, err.Error())
			return
		}
		var login modeldto.LoginRequest
		err = json.Unmarshal(b, &login)
		if err != nil {
			h.log.Error().Err(err).Msg("HandleLogin failed")
			h.writeMessage(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Info().Msg(fmt.Sprintf("new login request detected for %s", login.Email))
		if len(login.Email) == 0 || len(login.Password) == 0 {
			h.log.Error().Msg("HandleLogin failed")
			h.writeMessage(w, http.StatusBadRequest, "empty values are not allowed")
			return
		}
		accessToken, user, err := h.service.LoginUser(ctx, login)
		if err != nil {
			h.log.Error().Err(err).Msg("HandleLogin failed")
			var contextTimeoutExceededError *storageErrors.ContextTimeoutExceededError
			var invalidCredentialsError *serviceErrors.ServiceInvalidCredentials
			if errors.As(err, &contextTimeoutExceededError) {
				h.writeMessage(w, http.StatusGatewayTimeout, err.Error())
			} else if errors.As(err, &invalidCredentialsError) {
				h.writeMessage(w, http.StatusUnauthorized, err.Error())
			} else {
				h.writeMessage(w, http.StatusInternalServerError, err.Error())
			}
			return
		}
		h.writeJSON(w, http.StatusOK, modeldto.AuthResponse{Token: accessToken, User: user})
	}
}

// HandleGetMe processes current identity query requests.
func (h *Handler) HandleGetMe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		user, err := h.getUser(ctx, r)
		if err != nil {
			h.log.Error().Err(err).Msg("HandleGetMe failed")
			h.writeMessage(w, http.StatusUnauthorized, err.Error())
			return
		}
		h.writeJSON(w, http.StatusOK, user)
	}
}

// HandleGetServices processes catalog query requests.
func (h *Handler) HandleGetServices() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		services, err := h.service.GetServices(ctx, r.URL.Query().Get("platform"))
		if err != nil {
			h.log.Error().Err(err).Msg("HandleGetServices failed")
			var contextTimeoutExceededError *storageErrors.ContextTimeoutExceededError
			if errors.As(err, &contextTimeoutExceededError) {
				h.writeMessage(w, http.StatusGatewayTimeout, err.Error())
			} else {
				h.writeMessage(w, http.StatusInternalServerError, err.Error())
			}
			return
		}
		h.writeJSON(w, http.StatusOK, services)
	}
}

// HandleNewService processes catalog entry creation requests.
func (h *Handler) HandleNewService() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		_, err := h.getAdmin(ctx, w, r)
		if err != nil {
			return
		}
		b, err := ioutil.ReadAll(r.Body)
		if err != nil {
			h.log.Error().Err(err).Msg("HandleNewService failed")
			h.writeMessage(w, http.StatusInternalServerError, err.Error())
			return
		}
		var newService modeldto.NewService
		err = json.Unmarshal(b, &newService)
		if err != nil {
			h.log.Error().Err(err).Msg("HandleNewService failed")
			h.writeMessage(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Info().Msg(fmt.Sprintf("new service creation request detected for %s", newService.Name))
		service, err := h.service.AddNewService(ctx, newService)
		if err != nil {
			h.log.Error().Err(err).Msg("HandleNewService failed")
			var contextTimeoutExceededError *storageErrors.ContextTimeoutExceededError
			var invalidServiceSpecError *serviceErrors.ServiceInvalidServiceSpec
			if errors.As(err, &contextTimeoutExceededError) {
				h.writeMessage(w, http.StatusGatewayTimeout, err.Error())
			} else if errors.As(err, &invalidServiceSpecError) {
				h.writeMessage(w, http.StatusBadRequest, err.Error())
			} else {
				h.writeMessage(w, http.StatusInternalServerError, err.Error())
			}
			return
		}
		h.writeJSON(w, http.StatusOK, service)
	}
}

// HandleNewOrder processes new order requests.
func (h *Handler) HandleNewOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		user, err := h.getUser(ctx, r)
		if err != nil {
			h.log.Error().Err(err).Msg("HandleNewOrder failed")
			h.writeMessage(w, http.StatusUnauthorized, err.Error())
			return
		}
		b, err := ioutil.ReadAll(r.Body)
		if err != nil {
			h.log.Error().Err(err).Msg("HandleNewOrder failed")
			h.writeMessage(w, http.StatusInternalServerError, err.Error())
			return
		}
		var newOrder modeldto.NewOrder
		err = json.Unmarshal(b, &newOrder)
		if err != nil {
			h.log.Error().Err(err).Msg("HandleNewOrder failed")
			h.writeMessage(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Info().Msg(fmt.Sprintf("new order request detected for user %s", user.ID))
		order, err := h.service.AddNewOrder(ctx, user.ID, newOrder)
		if err != nil {
			h.log.Error().Err(err).Msg("HandleNewOrder failed")
			var contextTimeoutExceededError *storageErrors.ContextTimeoutExceededError
			var notFoundError *storageErrors.NotFoundError
			var notEnoughFundsError *storageErrors.NotEnoughFundsError
			var illegalLinkError *serviceErrors.ServiceIllegalLink
			var quantityOutOfRangeError *serviceErrors.ServiceQuantityOutOfRange
			if errors.As(err, &contextTimeoutExceededError) {
				h.writeMessage(w, http.StatusGatewayTimeout, err.Error())
			} else if errors.As(err, &notFoundError) {
				h.writeMessage(w, http.StatusNotFound, "service not found")
			} else if errors.As(err, &illegalLinkError) || errors.As(err, &quantityOutOfRangeError) {
				h.writeMessage(w, http.StatusBadRequest, err.Error())
			} else if errors.As(err, &notEnoughFundsError) {
				h.writeMessage(w, http.StatusBadRequest, "insufficient balance")
			} else {
				h.writeMessage(w, http.StatusInternalServerError, err.Error())
			}
			return
		}
		h.writeJSON(w, http.StatusOK, order)
	}
}

// HandleGetOrders processes orders query requests.
func (h *Handler) HandleGetOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		user, err := h.getUser(ctx, r)
		if err != nil {
			h.log.Error().Err(err).Msg("HandleGetOrders failed")
			h.writeMessage(w, http.StatusUnauthorized, err.Error())
			return
		}
		orders, err := h.service.GetOrders(ctx, user.ID)
		if err != nil {
			h.log.Error().Err(err).Msg("HandleGetOrders failed")
			h.writeMessage(w, http.StatusInternalServerError, err.Error())
			return
		}
		h.writeJSON(w, http.StatusOK, orders)
	}
}

// HandleGetOrder processes single order query requests. Lookup is scoped to
// the requesting identity.
func (h *Handler) HandleGetOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		user, err := h.getUser(ctx, r)
		if err != nil {
			h.log.Error().Err(err).Msg("HandleGetOrder failed")
			h.writeMessage(w, http.StatusUnauthorized, err.Error())
			return
		}
		orderID := chi.URLParam(r, "orderID")
		order, err := h.service.GetOrder(ctx, user.ID, orderID)
		if err != nil {
			h.log.Error().Err(err).Msg("HandleGetOrder failed")
			var contextTimeoutExceededError *storageErrors.ContextTimeoutExceededError
			var notFoundError *storageErrors.NotFoundError
			if errors.As(err, &contextTimeoutExceededError) {
				h.writeMessage(w, http.StatusGatewayTimeout, err.Error())
			} else if errors.As(err, &notFoundError) {
				h.writeMessage(w, http.StatusNotFound, "order not found")
			} else {
				h.writeMessage(w, http.StatusInternalServerError, err.Error())
			}
			return
		}
		h.writeJSON(w, http.StatusOK, order)
	}
}

// HandleGetBalance processes balance query requests.
func (h *Handler) HandleGetBalance() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		user, err := h.getUser(ctx, r)
		if err != nil {
			h.log.Error().Err(err).Msg("HandleGetBalance failed")
			h.writeMessage(w, http.StatusUnauthorized, err.Error())
			return
		}
		balance, err := h.service.GetBalance(ctx, user.ID)
		if err != nil {
			h.log.Error().Err(err).Msg("HandleGetBalance failed")
			h.writeMessage(w, http.StatusInternalServerError, err.Error())
			return
		}
		h.writeJSON(w, http.StatusOK, balance)
	}
}

// HandleNewDeposit processes deposit requests.
func (h *Handler) HandleNewDeposit() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		user, err := h.getUser(ctx, r)
		if err != nil {
			h.log.Error().Err(err).Msg("HandleNewDeposit failed")
			h.writeMessage(w, http.StatusUnauthorized, err.Error())
			return
		}
		b, err := ioutil.ReadAll(r.Body)
		if err != nil {
			h.log.Error().Err(err).Msg("HandleNewDeposit failed")
			h.writeMessage(w, http.StatusInternalServerError, err.Error())
			return
		}
		var deposit modeldto.NewDeposit
		err = json.Unmarshal(b, &deposit)
		if err != nil {
			h.log.Error().Err(err).Msg("HandleNewDeposit failed")
			h.writeMessage(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Info().Msg(fmt.Sprintf("new deposit request detected for user %s", user.ID))
		transaction, err := h.service.AddNewDeposit(ctx, user.ID, deposit)
		if err != nil {
			h.log.Error().Err(err).Msg("HandleNewDeposit failed")
			var contextTimeoutExceededError *storageErrors.ContextTimeoutExceededError
			var invalidAmountError *serviceErrors.ServiceInvalidAmount
			if errors.As(err, &contextTimeoutExceededError) {
				h.writeMessage(w, http.StatusGatewayTimeout, err.Error())
			} else if errors.As(err, &invalidAmountError) {
				h.writeMessage(w, http.StatusBadRequest, err.Error())
			} else {
				h.writeMessage(w, http.StatusInternalServerError, err.Error())
			}
			return
		}
		h.writeJSON(w, http.StatusOK, transaction)
	}
}

// HandleGetUsers processes admin user listing requests, password hashes are
// never serialized.
func (h *Handler) HandleGetUsers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		_, err := h.getAdmin(ctx, w, r)
		if err != nil {
			return
		}
		users, err := h.service.GetAllUsers(ctx)
		if err != nil {
			h.log.Error().Err(err).Msg("HandleGetUsers failed")
			h.writeMessage(w, http.StatusInternalServerError, err.Error())
			return
		}
		h.writeJSON(w, http.StatusOK, users)
	}
}

// HandleGetAllOrders processes admin orders query requests.
func (h *Handler) HandleGetAllOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		_, err := h.getAdmin(ctx, w, r)
		if err != nil {
			return
		}
		orders, err := h.service.GetAllOrders(ctx)
		if err != nil {
			h.log.Error().Err(err).Msg("HandleGetAllOrders failed")
			h.writeMessage(w, http.StatusInternalServerError, err.Error())
			return
		}
		h.writeJSON(w, http.StatusOK, orders)
	}
}

// HandleOrderStatusUpdate processes admin order status transition requests.
func (h *Handler) HandleOrderStatusUpdate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		_, err := h.getAdmin(ctx, w, r)
		if err != nil {
			return
		}
		b, err := ioutil.ReadAll(r.Body)
		if err != nil {
			h.log.Error().Err(err).Msg("HandleOrderStatusUpdate failed")
			h.writeMessage(w, http.StatusInternalServerError, err.Error())
			return
		}
		var update modeldto.OrderStatusUpdate
		err = json.Unmarshal(b, &update)
		if err != nil {
			h.log.Error().Err(err).Msg("HandleOrderStatusUpdate failed")
			h.writeMessage(w, http.StatusBadRequest, err.Error())
			return
		}
		orderID := chi.URLParam(r, "orderID")
		h.log.Info().Msg(fmt.Sprintf("order status update request detected for order %s", orderID))
		err = h.service.UpdateOrderStatus(ctx, orderID, update.Status)
		if err != nil {
			h.log.Error().Err(err).Msg("HandleOrderStatusUpdate failed")
			var contextTimeoutExceededError *storageErrors.ContextTimeoutExceededError
			var notFoundError *storageErrors.NotFoundError
			var invalidStatusError *serviceErrors.ServiceInvalidStatus
			if errors.As(err, &contextTimeoutExceededError) {
				h.writeMessage(w, http.StatusGatewayTimeout, err.Error())
			} else if errors.As(err, &invalidStatusError) {
				h.writeMessage(w, http.StatusBadRequest, err.Error())
			} else if errors.As(err, &notFoundError) {
				h.writeMessage(w, http.StatusNotFound, "order not found")
			} else {
				h.writeMessage(w, http.StatusInternalServerError, err.Error())
			}
			return
		}
		h.writeMessage(w, http.StatusOK, "order status updated")
	}
}

// HandleGetDeposits processes admin deposit listing requests.
func (h *Handler) HandleGetDeposits() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		_, err := h.getAdmin(ctx, w, r)
		if err != nil {
			return
		}
		deposits, err := h.service.GetDeposits(ctx)
		if err != nil {
			h.log.Error().Err(err).Msg("HandleGetDeposits failed")
			h.writeMessage(w, http.StatusInternalServerError, err.Error())
			return
		}
		h.writeJSON(w, http.StatusOK, deposits)
	}
}

// HandleDepositResolution processes admin deposit approval and rejection requests.
func (h *Handler) HandleDepositResolution() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		_, err := h.getAdmin(ctx, w, r)
		if err != nil {
			return
		}
		b, err := ioutil.ReadAll(r.Body)
		if err != nil {
			h.log.Error().Err(err).Msg("HandleDepositResolution failed")
			h.writeMessage(w, http.StatusInternalServerError, err.Error())
			return
		}
		var resolution modeldto.DepositResolution
		err = json.Unmarshal(b, &resolution)
		if err != nil {
			h.log.Error().Err(err).Msg("HandleDepositResolution failed")
			h.writeMessage(w, http.StatusBadRequest, err.Error())
			return
		}
		transactionID := chi.URLParam(r, "transactionID")
		h.log.Info().Msg(fmt.Sprintf("deposit resolution request detected for transaction %s", transactionID))
		transaction, err := h.service.ResolveDeposit(ctx, transactionID, resolution.Action)
		if err != nil {
			h.log.Error().Err(err).Msg("HandleDepositResolution failed")
			var contextTimeoutExceededError *storageErrors.ContextTimeoutExceededError
			var notFoundError *storageErrors.NotFoundError
			var alreadyProcessedError *storageErrors.AlreadyProcessedError
			var invalidActionError *serviceErrors.ServiceInvalidAction
			if errors.As(err, &contextTimeoutExceededError) {
				h.writeMessage(w, http.StatusGatewayTimeout, err.Error())
			} else if errors.As(err, &invalidActionError) || errors.As(err, &alreadyProcessedError) {
				h.writeMessage(w, http.StatusBadRequest, err.Error())
			} else if errors.As(err, &notFoundError) {
				h.writeMessage(w, http.StatusNotFound, "transaction not found")
			} else {
				h.writeMessage(w, http.StatusInternalServerError, err.Error())
			}
			return
		}
		h.writeJSON(w, http.StatusOK, transaction)
	}
}

// HandleGetStats processes admin aggregate counts requests.
func (h *Handler) HandleGetStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		_, err := h.getAdmin(ctx, w, r)
		if err != nil {
			return
		}
		stats, err := h.service.GetStats(ctx)
		if err != nil {
			h.log.Error().Err(err).Msg("HandleGetStats failed")
			h.writeMessage(w, http.StatusInternalServerError, err.Error())
			return
		}
		h.writeJSON(w, http.StatusOK, stats)
	}
}

// getUser retrieves the requesting identity from the request metadata.
func (h *Handler) getUser(ctx context.Context, r *http.Request) (modeldto.User, error) {
	accessToken := r.Header.Get("Authorization")
	if len(accessToken) == 0 {
		return modeldto.User{}, errors.New("token authorization required")
	}
	accessToken = strings.Replace(accessToken, "Bearer ", "", 1)
	user, err := h.service.GetUserByToken(ctx, accessToken)
	if err != nil {
		return modeldto.User{}, err
	}
	return user, nil
}

// getAdmin retrieves the requesting identity and rejects non-admin roles,
// writing the error response itself.
func (h *Handler) getAdmin(ctx context.Context, w http.ResponseWriter, r *http.Request) (modeldto.User, error) {
	user, err := h.getUser(ctx, r)
	if err != nil {
		h.log.Error().Err(err).Msg("admin authentication failed")
		h.writeMessage(w, http.StatusUnauthorized, err.Error())
		return modeldto.User{}, err
	}
	err = h.service.RequireRole(user, processorImpl.RoleAdmin)
	if err != nil {
		h.log.Error().Err(err).Msg("admin authorization failed")
		h.writeMessage(w, http.StatusForbidden, err.Error())
		return modeldto.User{}, err
	}
	return user, nil
}

func (h *Handler) writeJSON(w http.ResponseWriter, code int, payload interface{}) {
	resBody, err := json.Marshal(payload)
	if err != nil {
		h.log.Error().Err(err).Msg("response serialization failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, err = w.Write(resBody)
	if err != nil {
		h.log.Error().Err(err).Msg("response writing failed")
	}
}

func (h *Handler) writeMessage(w http.ResponseWriter, code int, msg string) {
	h.writeJSON(w, code, modeldto.Message{Message: msg})
}
