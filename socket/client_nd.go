package socket

import (
	"github.com/NVIDIA/aisnet/netdata"
	"github.com/NVIDIA/aisnet/status"
)

// ClientNd is a Client that exchanges framed NetData messages instead of
// character strings.
type ClientNd struct {
	*Client
	compressor *netdata.Compressor
}

// NewClientNd returns a ClientNd.
func NewClientNd(params ClientParams) *ClientNd {
	return &ClientNd{
		Client:     NewClient(params),
		compressor: netdata.NewCompressorWith(params.Compression, params.CompressionLevel, nonZero(params.CompressionMinSize, netdata.DefaultMinSize)),
	}
}

// ProcessRequest implements actor.Actor for NetData requests. request must
// be a *netdata.NetData; reply must be a *netdata.NetData.
func (cl *ClientNd) ProcessRequest(request, reply any) status.Status {
	in, ok := request.(*netdata.NetData)
	if !ok {
		return status.FromDesc("socket: ClientNd.ProcessRequest: request must be *netdata.NetData", status.Invalid)
	}
	out, ok := reply.(*netdata.NetData)
	if !ok {
		return status.FromDesc("socket: ClientNd.ProcessRequest: reply must be *netdata.NetData", status.Invalid)
	}
	return cl.RequestND(in, out)
}

// RequestND compresses and sends in, then blocks for and decompresses the
// reply into out. A send failure terminates the connection, mirroring
// Client.RequestStr.
func (cl *ClientNd) RequestND(in, out *netdata.NetData) status.Status {
	c := cl.currentConn()
	if c == nil {
		return status.FromDesc("socket: client is not connected", status.RuntimeErr)
	}

	if st := cl.compressor.Compress(in); !st.Ok() {
		return st
	}
	if st := c.SendND(in); !st.Ok() {
		c.Close()
		return st
	}
	if st := c.RecvND(out); !st.Ok() {
		c.Close()
		return st
	}
	if st := cl.compressor.Uncompress(out); !st.Ok() {
		return st
	}
	if out.Header.Status != 0 {
		return status.FromCodeDesc(int(out.Header.Status), "socket: server reported error status", status.Err)
	}
	return status.New()
}
