package httptransport

import (
	"errors"
	"net/http"

	"honeyshop/internal/activity"
	"honeyshop/internal/user"
	"honeyshop/pkg/domainerrors"
	"honeyshop/pkg/httputil"
	"honeyshop/pkg/requestcontext"
)

type registerRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type addressPayload struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

type authResponse struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Token     string `json:"token"`
}

type profileResponse struct {
	ID        int64          `json:"id"`
	Username  string         `json:"username"`
	Email     string         `json:"email"`
	FirstName string         `json:"firstName"`
	LastName  string         `json:"lastName"`
	Address   addressPayload `json:"address"`
	Phone     string         `json:"phone"`
	Token     string         `json:"token,omitempty"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	req := activity.FromRequest(r)
	sid := requestcontext.SessionID(r.Context())

	in, err := httputil.Decode[registerRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	res, err := h.users.Register(r.Context(), user.RegisterInput{
		Username:  in.Username,
		Email:     in.Email,
		Password:  in.Password,
		FirstName: in.FirstName,
		LastName:  in.LastName,
	})
	if err != nil {
		if isConflict(err) {
			h.activity.AuthAttempt(in.Email, false, 0, sid, req)
		}
		httputil.WriteError(w, err)
		return
	}

	h.activity.AuthAttempt(in.Email, true, res.User.ID, sid, req)
	httputil.WriteJSON(w, http.StatusCreated, authResponse{
		ID:        res.User.ID,
		Username:  res.User.Username,
		Email:     res.User.Email,
		FirstName: res.User.FirstName,
		LastName:  res.User.LastName,
		Token:     res.Token,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	req := activity.FromRequest(r)
	sid := requestcontext.SessionID(r.Context())

	in, err := httputil.Decode[loginRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	res, err := h.users.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		h.activity.AuthAttempt(in.Email, false, 0, sid, req)
		if errors.Is(err, user.ErrLockedOut) {
			h.activity.Suspicious("AUTH_LOCKED_OUT", activity.Details{
				"email": in.Email,
				"ip":    req.IP,
			}, sid, req)
		}
		httputil.WriteError(w, err)
		return
	}

	h.activity.AuthAttempt(in.Email, true, res.User.ID, sid, req)
	httputil.WriteJSON(w, http.StatusOK, authResponse{
		ID:        res.User.ID,
		Username:  res.User.Username,
		Email:     res.User.Email,
		FirstName: res.User.FirstName,
		LastName:  res.User.LastName,
		Token:     res.Token,
	})
}

func (h *Handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.Profile(r.Context(), requestcontext.UserID(r.Context()))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, profileView(u, ""))
}

type updateProfileRequest struct {
	Username  string         `json:"username"`
	Email     string         `json:"email"`
	Password  string         `json:"password"`
	FirstName string         `json:"firstName"`
	LastName  string         `json:"lastName"`
	Address   addressPayload `json:"address"`
	Phone     string         `json:"phone"`
}

func (h *Handler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	in, err := httputil.Decode[updateProfileRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	res, err := h.users.UpdateProfile(r.Context(), requestcontext.UserID(r.Context()), user.UpdateInput{
		Username:  in.Username,
		Email:     in.Email,
		Password:  in.Password,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Address: user.Address{
			Street:  in.Address.Street,
			City:    in.Address.City,
			State:   in.Address.State,
			ZipCode: in.Address.ZipCode,
			Country: in.Address.Country,
		},
		Phone: in.Phone,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, profileView(res.User, res.Token))
}

// isConflict reports whether err is a duplicate-account rejection, the one
// registration failure worth an AUTH_ATTEMPT record.
func isConflict(err error) bool {
	var derr *domainerrors.Error
	return errors.As(err, &derr) && derr.Code == domainerrors.CodeConflict
}

func profileView(u *user.User, token string) profileResponse {
	return profileResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Address: addressPayload{
			Street:  u.Address.Street,
			City:    u.Address.City,
			State:   u.Address.State,
			ZipCode: u.Address.ZipCode,
			Country: u.Address.Country,
		},
		Phone: u.Phone,
		Token: token,
	}
}
