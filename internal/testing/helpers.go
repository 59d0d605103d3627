// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package testing

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteProject writes files (relative path -> content) under a fresh
// temporary directory and returns its path. The directory is removed when
// the test finishes.
func WriteProject(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()
	for rel, content := range files {
		WriteFile(t, root, rel, content)
	}
	return root
}

// WriteFile writes a single file below root, creating parent directories.
func WriteFile(t *testing.T, root, rel, content string) string {
	t.Helper()

	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir for %s: %v", rel, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", rel, err)
	}
	return path
}

// CLIProject is an argparse based command line tool.
func CLIProject() map[string]string {
	return map[string]string{
		"cli.py": `import argparse


def main():
    parser = argparse.ArgumentParser(description="Greeter")
    parser.add_argument('--name', help='User name')
    parser.add_argument("--count", type=int, help="How many times")
    parser.add_argument("--verbose", action="store_true", help="Verbose output")
    parser.add_argument("--range", nargs=2, type=float)
    args = parser.parse_args()
    print(args)


if __name__ == "__main__":
    main()
`,
		"requirements.txt": "requests>=2.31\nrich[jupyter]==13.0 ; python_version > '3.8'\n-r dev.txt\ngit+https://github.com/x/y.git\n",
		"README.md":        "# greeter\n\n[![ci](https://example.com/badge.svg)](https://example.com)\n\nA tiny command line tool that greets users by name and counts.\n",
	}
}

// FlaskProject is a Flask web application with typed route parameters.
func FlaskProject() map[string]string {
	return map[string]string{
		"app.py": `from flask import Flask, request

app = Flask(__name__)


@app.route('/users/<int:id>')
def get_user(id):
    """Return a user."""
    return {"id": id}


@app.route("/search", methods=["POST"])
def search():
    q = request.args.get("q")
    page = request.args.get('page')
    return {"q": q, "page": page}
`,
		"requirements.txt": "flask==3.0\n",
	}
}

// FastAPIProject is a FastAPI application with path and query parameters.
func FastAPIProject() map[string]string {
	return map[string]string{
		"main.py": `from typing import Optional
from fastapi import FastAPI, Query

app = FastAPI()


@app.get("/items/{item_id}")
async def read_item(item_id: int, q: Optional[str] = Query(None)):
    return {"item_id": item_id, "q": q}


@app.delete("/items/{item_id}")
def delete_item(item_id: int):
    return None
`,
		"pyproject.toml": `[project]
name = "inventory-api"
dependencies = [
    "fastapi>=0.110",
    "uvicorn[standard]",
]
`,
	}
}

// LibraryProject is a plain module of documented functions.
func LibraryProject() map[string]string {
	return map[string]string{
		"mathlib/__init__.py": "",
		"mathlib/ops.py": `def add(a, b):
    """Add two numbers."""
    return a + b


def _internal(x):
    return x


class Calculator:
    """Stateful calculator."""

    def __init__(self, start: int = 0):
        self.value = start

    def multiply(self, factor: float) -> float:
        """Multiply the current value by factor."""
        self.value *= factor
        return self.value

    def _reset(self):
        self.value = 0
`,
		"tests/test_ops.py": `def test_add():
    assert True
`,
	}
}
