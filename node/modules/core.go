package modules

import (
	"context"
	"crypto/rand"
	"errors"
	"io"

	"github.com/gbrlsnchs/jwt/v3"
	logging "github.com/ipfs/go-log/v2"
	"go.uber.org/fx"
	"golang.org/x/xerrors"

	"github.com/filecoin-project/go-jsonrpc/auth"

	"github.com/govexec/govexec/api"
	"github.com/govexec/govexec/node/modules/dtypes"
	"github.com/govexec/govexec/node/modules/helpers"
	"github.com/govexec/govexec/node/repo"
)

var log = logging.Logger("modules")

const JWTSecretName = "auth-jwt-private"

type jwtPayload struct {
	Allow []auth.Permission
}

// LockedRepo binds the locked repo to the application lifecycle so it is
// released on shutdown.
func LockedRepo(lr repo.LockedRepo) func(lc fx.Lifecycle) repo.LockedRepo {
	return func(lc fx.Lifecycle) repo.LockedRepo {
		lc.Append(fx.Hook{
			OnStop: func(_ context.Context) error {
				return lr.Close()
			},
		})

		return lr
	}
}

func KeyStore(lr repo.LockedRepo) (repo.KeyStore, error) {
	return lr.KeyStore()
}

// APISecret loads the JWT signing secret from the keystore, generating it and
// an admin token on first start.
func APISecret(keystore repo.KeyStore, lr repo.LockedRepo) (*dtypes.APIAlg, error) {
	key, err := keystore.Get(JWTSecretName)

	if errors.Is(err, repo.ErrKeyInfoNotFound) {
		log.Warn("Generating new API secret")

		sk, err := io.ReadAll(io.LimitReader(rand.Reader, 32))
		if err != nil {
			return nil, err
		}

		key = repo.KeyInfo{
			Type:       repo.KTJwtHmacSecret,
			PrivateKey: sk,
		}

		if err := keystore.Put(JWTSecretName, key); err != nil {
			return nil, xerrors.Errorf("writing API secret: %w", err)
		}

		p := jwtPayload{
			Allow: api.AllPermissions,
		}

		cliToken, err := jwt.Sign(&p, jwt.NewHS256(key.PrivateKey))
		if err != nil {
			return nil, err
		}

		if err := lr.SetAPIToken(cliToken); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, xerrors.Errorf("could not get JWT Token: %w", err)
	}

	return (*dtypes.APIAlg)(jwt.NewHS256(key.PrivateKey)), nil
}

func Datastore(lc fx.Lifecycle, mctx helpers.MetricsCtx, lr repo.LockedRepo) (dtypes.MetadataDS, error) {
	return lr.Datastore(helpers.LifecycleCtx(mctx, lc), "/metadata")
}
