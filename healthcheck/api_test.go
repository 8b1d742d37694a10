// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package healthcheck

import (
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Create", func() {
	var (
		server  *httptest.Server
		handler http.HandlerFunc
	)

	BeforeEach(func() {
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handler(w, r)
		}))
		apiURL = server.URL
	})

	AfterEach(func() {
		server.Close()
	})

	It("returns the check id parsed from the ping url", func() {
		handler = func(w http.ResponseWriter, r *http.Request) {
			Expect(r.Method).To(Equal(http.MethodPost))
			Expect(r.URL.Path).To(Equal("/checks/"))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"ping_url": "https://hc-ping.com/de1b2f3a-0000-0000-0000-000000000000"}`))
		}

		checkID, err := Create("vsdata pipeline", "vsdata", []string{"vsdata"}, "0 6 * * *")

		Expect(err).To(BeNil())
		Expect(checkID).To(Equal("de1b2f3a-0000-0000-0000-000000000000"))
	})

	It("reports a non-2xx response as ErrStatus", func() {
		handler = func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}

		_, err := Create("vsdata pipeline", "vsdata", nil, "0 6 * * *")
		Expect(err).To(MatchError(ErrStatus))
	})
})

var _ = Describe("Ping", func() {
	It("succeeds when the monitor answers 200", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			Expect(r.URL.Path).To(Equal("/my-check-id"))
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()
		pingURL = server.URL

		Expect(Ping("my-check-id")).To(Succeed())
	})

	It("reports a non-200 response as ErrStatus", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()
		pingURL = server.URL

		Expect(Ping("missing")).To(MatchError(ErrStatus))
	})
})

var _ = Describe("Delete", func() {
	It("issues a delete for the check", func() {
		var gotMethod, gotPath string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			gotPath = r.URL.Path
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"ping_url": ""}`))
		}))
		defer server.Close()
		apiURL = server.URL

		Expect(Delete("my-check-id")).To(Succeed())
		Expect(gotMethod).To(Equal(http.MethodDelete))
		Expect(gotPath).To(Equal("/checks/my-check-id"))
	})

	It("reports a non-200 response as ErrStatus", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer server.Close()
		apiURL = server.URL

		Expect(Delete("my-check-id")).To(MatchError(ErrStatus))
	})
})
