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
package loader_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/venture-scope/vsdata/data"
	"github.com/venture-scope/vsdata/loader"
)

const startupHeader = "permalink,name,category_list,country_code,status,funding_total_usd,funding_rounds,founded_at,first_funding_at,last_funding_at\n"

var _ = Describe("DetectDelimiter", func() {
	DescribeTable("picks the most frequent candidate in the header",
		func(header string, expected rune) {
			Expect(loader.DetectDelimiter([]byte(header))).To(Equal(expected))
		},
		Entry("comma", "permalink,name,status", ','),
		Entry("semicolon", "permalink;name;status", ';'),
		Entry("tab", "permalink\tname\tstatus", '\t'),
		Entry("pipe", "permalink|name|status", '|'),
		Entry("comma wins a tie", "a,b;c,d", ','),
	)
})

var _ = Describe("ParseStartups", func() {
	It("parses a comma-delimited table", func() {
		content := []byte(startupHeader +
			"/organization/acme,Acme,Software,USA,operating,5000000,2,2012-04-01,2013-01-01,2014-01-01\n")

		startups, skipped, err := loader.ParseStartups(content)

		Expect(err).To(BeNil())
		Expect(skipped).To(BeZero())
		Expect(startups).To(HaveLen(1))

		startup := startups[0]
		Expect(startup.Permalink).To(Equal("/organization/acme"))
		Expect(startup.Status).To(Equal(data.Operating))
		Expect(startup.FundingTotal.Value).To(Equal(5000000.0))
		Expect(startup.FundingRounds.Value).To(Equal(int64(2)))
		Expect(startup.FoundedAt.Known).To(BeTrue())
	})

	It("parses a semicolon-delimited table", func() {
		content := []byte(
			"permalink;name;category_list;country_code;status;funding_total_usd;funding_rounds;founded_at;first_funding_at;last_funding_at\n" +
				"/organization/acme;Acme;Software;USA;operating;-;-;-;-;-\n")

		startups, skipped, err := loader.ParseStartups(content)

		Expect(err).To(BeNil())
		Expect(skipped).To(BeZero())
		Expect(startups).To(HaveLen(1))
		Expect(startups[0].FundingTotal.Known).To(BeFalse())
	})

	It("skips rows with the wrong column count", func() {
		content := []byte(startupHeader +
			"/organization/acme,Acme,Software,USA,operating,5000000,2,2012-04-01,2013-01-01,2014-01-01\n" +
			"/organization/short,OnlyTwoFields\n")

		startups, skipped, err := loader.ParseStartups(content)

		Expect(err).To(BeNil())
		Expect(skipped).To(Equal(1))
		Expect(startups).To(HaveLen(1))
	})

	It("normalizes unrecognized status values", func() {
		content := []byte(startupHeader +
			"/organization/acme,Acme,Software,USA,zombie,-,-,-,-,-\n")

		startups, _, err := loader.ParseStartups(content)

		Expect(err).To(BeNil())
		Expect(startups[0].Status).To(Equal(data.UnknownStatus))
	})

	It("returns ErrEmptyTable for a header-only file", func() {
		_, _, err := loader.ParseStartups([]byte(startupHeader))
		Expect(err).To(MatchError(loader.ErrEmptyTable))
	})
})

var _ = Describe("ReadFile", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	It("decodes latin-1 files to UTF-8", func() {
		fn := filepath.Join(dir, "latin1.csv")
		// 'ñ' in latin-1 is the single byte 0xF1, which is invalid UTF-8
		Expect(os.WriteFile(fn, []byte{'p', 'e', 0xF1, 'a'}, 0644)).To(Succeed())

		content, err := loader.New().ReadFile(fn)
		Expect(err).To(BeNil())
		Expect(string(content)).To(Equal("peña"))
	})

	It("passes valid UTF-8 through untouched", func() {
		fn := filepath.Join(dir, "utf8.csv")
		Expect(os.WriteFile(fn, []byte("peña"), 0644)).To(Succeed())

		content, err := loader.New().ReadFile(fn)
		Expect(err).To(BeNil())
		Expect(string(content)).To(Equal("peña"))
	})

	It("serves repeated reads from the cache", func() {
		fn := filepath.Join(dir, "cached.csv")
		Expect(os.WriteFile(fn, []byte("hello"), 0644)).To(Succeed())

		myLoader := loader.New()
		first, err := myLoader.ReadFile(fn)
		Expect(err).To(BeNil())

		// rewrite the file; the cached copy should still be served
		Expect(os.WriteFile(fn, []byte("changed"), 0644)).To(Succeed())

		second, err := myLoader.ReadFile(fn)
		Expect(err).To(BeNil())
		Expect(second).To(Equal(first))
	})

	It("returns an error for a missing file", func() {
		_, err := loader.New().ReadFile(filepath.Join(dir, "missing.csv"))
		Expect(err).To(HaveOccurred())
	})
})
