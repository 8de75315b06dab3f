package lsp

// RegisterDefaultConfigs registers the built-in server table. Entries for
// the same language are fallback candidates in registration order; python
// gets two complementary servers (pyright for semantics, ruff for lint
// and formatting).
func (m *Manager) RegisterDefaultConfigs() {
	m.RegisterConfig(NewServerConfig("rust-analyzer", "rust", "rust-analyzer"))

	m.RegisterConfig(NewServerConfig("pyright", "python", "pyright-langserver", "--stdio"))
	m.RegisterConfig(NewServerConfig("ruff", "python", "ruff", "server").WithMask(Capabilities{
		CodeActions: true,
		Formatting:  true,
		Diagnostics: true,
	}))

	for _, lang := range []string{"typescript", "typescriptreact", "javascript", "javascriptreact"} {
		m.RegisterConfig(NewServerConfig("typescript-language-server", lang, "typescript-language-server", "--stdio"))
	}

	m.RegisterConfig(NewServerConfig("gopls", "go", "gopls"))

	m.RegisterConfig(NewServerConfig("clangd", "c", "clangd"))
	m.RegisterConfig(NewServerConfig("clangd", "cpp", "clangd"))

	m.RegisterConfig(NewServerConfig("jdtls", "java", "jdtls"))
	m.RegisterConfig(NewServerConfig("kotlin-language-server", "kotlin", "kotlin-language-server"))
	m.RegisterConfig(NewServerConfig("solargraph", "ruby", "solargraph", "stdio"))
	m.RegisterConfig(NewServerConfig("intelephense", "php", "intelephense", "--stdio"))
	m.RegisterConfig(NewServerConfig("omnisharp", "csharp", "omnisharp", "--languageserver"))
	m.RegisterConfig(NewServerConfig("lua-ls", "lua", "lua-language-server"))
	m.RegisterConfig(NewServerConfig("zls", "zig", "zls"))
	m.RegisterConfig(NewServerConfig("hls", "haskell", "haskell-language-server-wrapper", "--lsp"))
	m.RegisterConfig(NewServerConfig("ocamllsp", "ocaml", "ocamllsp"))
	m.RegisterConfig(NewServerConfig("elixir-ls", "elixir", "elixir-ls"))
	m.RegisterConfig(NewServerConfig("erlang_ls", "erlang", "erlang_ls"))
	m.RegisterConfig(NewServerConfig("julia-ls", "julia",
		"julia", "--project=@.", "-e", "using LanguageServer; runserver()"))
	m.RegisterConfig(NewServerConfig("bash-ls", "shellscript", "bash-language-server", "start"))
	m.RegisterConfig(NewServerConfig("html-ls", "html", "vscode-html-language-server", "--stdio"))
	m.RegisterConfig(NewServerConfig("css-ls", "css", "vscode-css-language-server", "--stdio"))
	m.RegisterConfig(NewServerConfig("json-ls", "json", "vscode-json-language-server", "--stdio"))
	m.RegisterConfig(NewServerConfig("yaml-ls", "yaml", "yaml-language-server", "--stdio"))
	m.RegisterConfig(NewServerConfig("taplo", "toml", "taplo", "lsp", "stdio"))
	m.RegisterConfig(NewServerConfig("marksman", "markdown", "marksman", "server"))
	m.RegisterConfig(NewServerConfig("docker-ls", "dockerfile", "docker-langserver", "--stdio"))
	m.RegisterConfig(NewServerConfig("terraform-ls", "terraform", "terraform-ls", "serve"))
	m.RegisterConfig(NewServerConfig("nil", "nix", "nil"))
	m.RegisterConfig(NewServerConfig("sqls", "sql", "sqls"))
	m.RegisterConfig(NewServerConfig("vue-ls", "vue", "vue-language-server", "--stdio"))
	m.RegisterConfig(NewServerConfig("svelte-ls", "svelte", "svelteserver", "--stdio"))
	m.RegisterConfig(NewServerConfig("elm-ls", "elm", "elm-language-server"))
	m.RegisterConfig(NewServerConfig("metals", "scala", "metals"))
	m.RegisterConfig(NewServerConfig("dart-ls", "dart", "dart", "language-server", "--protocol=lsp"))
	m.RegisterConfig(NewServerConfig("clojure-lsp", "clojure", "clojure-lsp"))
	m.RegisterConfig(NewServerConfig("fortls", "fortran", "fortls"))
	m.RegisterConfig(NewServerConfig("serve-d", "d", "serve-d"))
	m.RegisterConfig(NewServerConfig("nimlsp", "nim", "nimlsp"))
	m.RegisterConfig(NewServerConfig("vls", "v", "vls"))
	m.RegisterConfig(NewServerConfig("perlnavigator", "perl", "perlnavigator"))
	m.RegisterConfig(NewServerConfig("r-ls", "r", "R", "--slave", "-e", "languageserver::run()"))
	m.RegisterConfig(NewServerConfig("graphql-lsp", "graphql", "graphql-lsp", "server", "-m", "stream"))
	m.RegisterConfig(NewServerConfig("cmake-ls", "cmake", "cmake-language-server"))
	m.RegisterConfig(NewServerConfig("groovy-ls", "groovy", "groovy-language-server"))
	m.RegisterConfig(NewServerConfig("sourcekit-lsp", "swift", "sourcekit-lsp"))
	m.RegisterConfig(NewServerConfig("fsautocomplete", "fsharp", "fsautocomplete", "--adaptive-lsp-server-enabled"))
	m.RegisterConfig(NewServerConfig("pwsh-ls", "powershell",
		"pwsh", "-NoLogo", "-NoProfile", "-Command",
		"Import-Module PowerShellEditorServices; Start-EditorServices -HostName 'quill' -HostProfileId 'quill' -HostVersion '1.0.0' -Stdio"))
	m.RegisterConfig(NewServerConfig("buf-ls", "proto", "buf", "lsp"))
	m.RegisterConfig(NewServerConfig("asm-lsp", "asm", "asm-lsp"))
	m.RegisterConfig(NewServerConfig("ols", "odin", "ols"))
}
