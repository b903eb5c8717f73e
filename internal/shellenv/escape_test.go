package shellenv_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/gardencli/garden/internal/shellenv"
)

var _ = Describe("Shell Escaping Functions", func() {
	Describe("ShellEscapePOSIX", func() {
		It("returns empty string for no args", func() {
			Expect(shellenv.ShellEscapePOSIX()).To(Equal(""))
		})

		DescribeTable("single string argument",
			func(input string, expected string) {
				Expect(shellenv.ShellEscapePOSIX(input)).To(Equal(expected))
			},
			Entry("empty string", "", "''"),
			Entry("simple string", "foo", "'foo'"),
			Entry("string with space", "foo bar", "'foo bar'"),
			Entry("apostrophe", "O'Reilly", "'O'\"'\"'Reilly'"),
			Entry("double quote", `foo"bar`, "'foo\"bar'"),
			Entry("backslash", `foo\bar`, "'foo\\bar'"),
			Entry("dollar", "foo$bar", "'foo$bar'"),
			Entry("unicode", "föö", "'föö'"),
		)

		It("handles integer", func() {
			Expect(shellenv.ShellEscapePOSIX(123)).To(Equal("'123'"))
		})

		It("handles multiple arguments", func() {
			Expect(shellenv.ShellEscapePOSIX("foo", "bar", 123)).To(Equal("'foo' 'bar' '123'"))
		})
	})

	Describe("ShellEscapeFish", func() {
		DescribeTable("single string argument",
			func(input string, expected string) {
				Expect(shellenv.ShellEscapeFish(input)).To(Equal(expected))
			},
			Entry("empty string", "", "''"),
			Entry("simple string", "foo", "'foo'"),
			Entry("apostrophe", "O'Reilly", "'O'\\''Reilly'"),
			Entry("backslash", `foo\bar`, `'foo\\bar'`),
		)
	})

	Describe("ShellEscapePowerShell", func() {
		DescribeTable("single string argument",
			func(input string, expected string) {
				Expect(shellenv.ShellEscapePowerShell(input)).To(Equal(expected))
			},
			Entry("empty string", "", "''"),
			Entry("simple string", "foo", "'foo'"),
			Entry("apostrophe", "O'Reilly", "'O''Reilly'"),
			Entry("left single quotation mark", "O‘Reilly", "'O‘‘Reilly'"),
		)
	})

	Describe("StripUnsafe", func() {
		It("removes control characters but keeps newlines and tabs", func() {
			Expect(shellenv.StripUnsafe("a\x00b\nc\td")).To(Equal("ab\nc\td"))
		})
	})
})
