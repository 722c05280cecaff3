// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accounts_test

import (
	"bytes"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/compute/api/accounts"
	"github.com/vechain/compute/api/utils"
	"github.com/vechain/compute/compute"
	"github.com/vechain/compute/test/datagen"
	"github.com/vechain/compute/test/testnode"
)

func initAccountServer(t *testing.T) *httptest.Server {
	n := testnode.New(t)
	router := mux.NewRouter()
	accounts.New(n.Node).Mount(router, "/accounts")
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return ts
}

func httpPost(t *testing.T, url string, body any) int {
	data, err := json.Marshal(body)
	require.NoError(t, err)
	res, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, res.Body)
	return res.StatusCode
}

func getAccount(t *testing.T, url string) (int, *accounts.Account) {
	res, err := http.Get(url)
	require.NoError(t, err)
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return res.StatusCode, nil
	}
	var acc accounts.Account
	require.NoError(t, json.NewDecoder(res.Body).Decode(&acc))
	return res.StatusCode, &acc
}

func TestAccounts(t *testing.T) {
	ts := initAccountServer(t)
	alice, bob := testnode.Alice, testnode.Bob
	carol := datagen.RandAddress()

	status, acc := getAccount(t, ts.URL+"/accounts/"+alice.String())
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, testnode.Tokens(1000).String(), (*big.Int)(acc.Balance).String())
	assert.Equal(t, compute.EngineAddress, acc.Spender)
	assert.Equal(t, testnode.Tokens(1000).String(), (*big.Int)(acc.Allowance).String())

	status = httpPost(t, ts.URL+"/accounts/transfer", utils.M{"caller": &alice, "to": &carol, "amount": "0x10"})
	assert.Equal(t, http.StatusOK, status)
	_, acc = getAccount(t, ts.URL+"/accounts/"+carol.String())
	assert.Equal(t, int64(16), (*big.Int)(acc.Balance).Int64())

	status = httpPost(t, ts.URL+"/accounts/transfer", utils.M{"caller": &carol, "to": &alice, "amount": "17"})
	assert.Equal(t, http.StatusPaymentRequired, status)

	status = httpPost(t, ts.URL+"/accounts/approve", utils.M{"caller": &carol, "spender": &bob, "amount": "5"})
	assert.Equal(t, http.StatusOK, status)
	_, acc = getAccount(t, ts.URL+"/accounts/"+carol.String()+"?spender="+bob.String())
	assert.Equal(t, bob, acc.Spender)
	assert.Equal(t, int64(5), (*big.Int)(acc.Allowance).Int64())
}

func TestBadRequests(t *testing.T) {
	ts := initAccountServer(t)

	status, _ := getAccount(t, ts.URL+"/accounts/0x01")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = getAccount(t, ts.URL+"/accounts/"+testnode.Alice.String()+"?spender=bad")
	assert.Equal(t, http.StatusBadRequest, status)

	status = httpPost(t, ts.URL+"/accounts/transfer", utils.M{"caller": &testnode.Alice, "amount": "1"})
	assert.Equal(t, http.StatusBadRequest, status)

	status = httpPost(t, ts.URL+"/accounts/transfer", utils.M{"caller": &testnode.Alice, "to": &testnode.Bob, "amount": "-1"})
	assert.Equal(t, http.StatusBadRequest, status)
}
