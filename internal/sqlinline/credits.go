package sqlinline

const QSelectCreditBalance = `--sql 71db23c4-ec7c-42d2-bdfb-9af94f5c34df
select balance
from user_credits
where user_id = $1;
`
