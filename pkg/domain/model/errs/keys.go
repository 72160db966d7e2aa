package errs

import "github.com/m-mizutani/goerr/v2"

// RepositoryKey identifies which repository implementation raised an error.
var RepositoryKey = goerr.NewTypedKey[string]("repository")
