package grpclog

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"

	"mercator-hq/wiretap/pkg/reqctx"
	wiretls "mercator-hq/wiretap/pkg/security/tls"
	"mercator-hq/wiretap/pkg/telemetry/logging"
)

// MetadataProvider describes the active gRPC call as
// "method: [<full method>], peer: [<addr>], username: [<user>]". It yields
// an empty context outside a gRPC call.
//
// The username is the identity on the context, else the verified client
// certificate's identity read from IdentitySource, else the x-user
// metadata value.
type MetadataProvider struct {
	IdentitySource string
}

// RequestContext implements reqctx.Provider.
func (mp MetadataProvider) RequestContext(ctx context.Context) (reqctx.RequestContext, error) {
	method, ok := grpc.Method(ctx)
	if !ok {
		return reqctx.RequestContext{}, nil
	}

	var addr, username any
	p, hasPeer := peer.FromContext(ctx)
	if hasPeer && p.Addr != nil {
		addr = p.Addr.String()
	}

	if user := logging.GetUser(ctx); user != "" {
		username = user
	} else if id := certIdentity(p, mp.IdentitySource); id != "" {
		username = id
	} else if md, ok := metadata.FromIncomingContext(ctx); ok {
		if v := md.Get(UserMetadataKey); len(v) > 0 {
			username = v[0]
		}
	}

	return reqctx.New(
		"method", method,
		"peer", addr,
		"username", username,
	), nil
}

// UserMetadataKey is the incoming metadata key read as the caller's
// username when no identity is set on the context.
const UserMetadataKey = "x-user"

func certIdentity(p *peer.Peer, source string) string {
	if p == nil {
		return ""
	}
	info, ok := p.AuthInfo.(credentials.TLSInfo)
	if !ok || len(info.State.VerifiedChains) == 0 || len(info.State.VerifiedChains[0]) == 0 {
		return ""
	}
	return wiretls.ExtractClientIdentity(info.State.VerifiedChains[0][0], source)
}
