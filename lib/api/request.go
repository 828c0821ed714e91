package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/curatenet/tcr/lib/errors"
)

func decodeBody(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.BadRequestParameter.Clone().SetData("error", err.Error())
	}
	return nil
}

func pathVar(r *http.Request, name string) string {
	return mux.Vars(r)[name]
}

func pathVarUint64(r *http.Request, name string) (uint64, error) {
	v, err := strconv.ParseUint(mux.Vars(r)[name], 10, 64)
	if err != nil {
		return 0, errors.BadRequestParameter.Clone().SetData(name, mux.Vars(r)[name])
	}
	return v, nil
}

func queryUint64(r *http.Request, name string) (uint64, error) {
	s := r.URL.Query().Get(name)
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, errors.BadRequestParameter.Clone().SetData(name, s)
	}
	return v, nil
}
