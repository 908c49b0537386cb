package socket_test

import (
	"net"
	"testing"

	"github.com/NVIDIA/aisnet/actor"
	"github.com/NVIDIA/aisnet/netdata"
	"github.com/NVIDIA/aisnet/socket"
	"github.com/NVIDIA/aisnet/status"
)

func startServer(t *testing.T, params socket.ServerParams, handler socket.Handler) *socket.Server {
	t.Helper()
	params.Port = 0 // let the OS pick a free port
	s := socket.NewServer(params, handler)
	st := actor.Run(s)
	if !st.Ok() {
		t.Fatalf("server Start failed: %v", st)
	}
	t.Cleanup(func() { actor.Terminate(s) })
	return s
}

func serverPort(t *testing.T, s *socket.Server) int {
	t.Helper()
	addr, ok := s.Addr().(*net.TCPAddr)
	if !ok {
		t.Fatalf("Addr() = %T, want *net.TCPAddr", s.Addr())
	}
	return addr.Port
}

func dialClient(t *testing.T, port int) *socket.Client {
	t.Helper()
	params := socket.DefaultClientParams()
	params.Port = port
	cl := socket.NewClient(params)
	st := actor.Run(cl)
	if !st.Ok() {
		t.Fatalf("client Start failed: %v", st)
	}
	t.Cleanup(func() { actor.Terminate(cl) })
	return cl
}

func TestCharStreamEcho(t *testing.T) {
	s := startServer(t, socket.DefaultServerParams(), nil)
	cl := dialClient(t, serverPort(t, s))

	var reply string
	if st := cl.RequestStr("hello", &reply); !st.Ok() {
		t.Fatalf("RequestStr failed: %v", st)
	}
	if reply != "hello" {
		t.Fatalf("reply = %q, want %q", reply, "hello")
	}
}

// person is a fixed test record exercising Serializable/Loadable.
type person struct {
	Name string
	Age  int32
}

func (p *person) Store(enc *netdata.Encoder) error {
	if err := enc.WriteString(p.Name); err != nil {
		return err
	}
	return enc.WriteInt32(p.Age)
}

func (p *person) Load(dec *netdata.Decoder) error {
	name, err := dec.ReadString()
	if err != nil {
		return err
	}
	age, err := dec.ReadInt32()
	if err != nil {
		return err
	}
	p.Name, p.Age = name, age
	return nil
}

type getPersonsIn struct {
	MaxCount int32
}

func (in *getPersonsIn) ObjectID() netdata.ID { return getPersonsID }

func (in *getPersonsIn) Store(enc *netdata.Encoder) error {
	return enc.WriteInt32(in.MaxCount)
}

func (in *getPersonsIn) Load(dec *netdata.Decoder) error {
	v, err := dec.ReadInt32()
	if err != nil {
		return err
	}
	in.MaxCount = v
	return nil
}

const getPersonsID netdata.ID = 1

var fixedPersons = []person{
	{Name: "Ada", Age: 36},
	{Name: "Grace", Age: 85},
	{Name: "Alan", Age: 41},
	{Name: "Katherine", Age: 101},
}

func getPersonsHandler(req, reply *netdata.NetData) status.Status {
	req.Rewind()
	dec := netdata.NewDecoder(req)
	var in getPersonsIn
	if err := dec.ReadObject(&in); err != nil {
		return status.FromDesc(err.Error(), status.Invalid)
	}

	enc := netdata.NewEncoder(reply)
	err := netdata.WriteSlice(enc, fixedPersons, func(e *netdata.Encoder, p person) error {
		return e.WriteObject(&p)
	})
	if err != nil {
		return status.FromDesc(err.Error(), status.RuntimeErr)
	}
	return status.New()
}

func TestNetDataGetPersonsRPC(t *testing.T) {
	params := socket.DefaultServerParams()
	params.Mode = socket.ModeNetData
	srv := socket.NewServerNd(params)
	srv.Register(getPersonsID, getPersonsHandler)

	st := actor.Run(srv)
	if !st.Ok() {
		t.Fatalf("server Start failed: %v", st)
	}
	t.Cleanup(func() { actor.Terminate(srv) })

	cparams := socket.DefaultClientParams()
	cparams.Port = serverPort(t, srv.Server)
	cl := socket.NewClientNd(cparams)
	if st := actor.Run(cl); !st.Ok() {
		t.Fatalf("client Start failed: %v", st)
	}
	t.Cleanup(func() { actor.Terminate(cl) })

	req := netdata.New()
	enc := netdata.NewEncoder(req)
	if err := enc.WriteObject(&getPersonsIn{MaxCount: 0}); err != nil {
		t.Fatalf("encode request: %v", err)
	}

	reply := netdata.New()
	if st := cl.RequestND(req, reply); !st.Ok() {
		t.Fatalf("RequestND failed: %v", st)
	}

	reply.Rewind()
	dec := netdata.NewDecoder(reply)
	got, err := netdata.ReadSlice(dec, func(d *netdata.Decoder) (person, error) {
		var p person
		err := d.ReadObject(&p)
		return p, err
	})
	if err != nil {
		t.Fatalf("decode reply: %v", err)
	}
	if len(got) != len(fixedPersons) {
		t.Fatalf("got %d persons, want %d", len(got), len(fixedPersons))
	}
	for i, want := range fixedPersons {
		if got[i] != want {
			t.Fatalf("person[%d] = %+v, want %+v", i, got[i], want)
		}
	}
}

func TestDualModeFallsBackOnInvalidHeader(t *testing.T) {
	// A dual-mode port (ServerNd configured with Mode CharStream) peeks the
	// first netdata.HeaderSize bytes of every new connection; a corrupted
	// magic number must never be consumed as a NetData frame, and must
	// instead fall back to character-stream handling.
	params := socket.DefaultServerParams()
	srv := socket.NewServerNd(params)
	st := actor.Run(srv)
	if !st.Ok() {
		t.Fatalf("server Start failed: %v", st)
	}
	t.Cleanup(func() { actor.Terminate(srv) })

	nc, err := net.Dial("tcp", srv.Server.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer nc.Close()

	header := make([]byte, netdata.HeaderSize)
	for i := range header {
		header[i] = 'A' // corrupted magic (0x41414141), never equals netdata.Magic
	}
	if _, err := nc.Write(append(header, 0)); err != nil {
		t.Fatalf("write: %v", err)
	}

	buf := make([]byte, netdata.HeaderSize+1)
	n, err := nc.Read(buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(buf[:n-1]) != string(header) {
		t.Fatalf("echoed %v, want %v", buf[:n-1], header)
	}
}
